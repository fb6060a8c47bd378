package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/xpbridge/internal/wizard"
)

var (
	wizardUser      string
	wizardCharacter string
	wizardPeriod    string
)

const wizardHelp = `Commands:
  char <name>       select a character (char none clears it)
  char next|prev    page through characters
  period <label>    select a play period (period none clears it)
  period next|prev  page through play periods
  cats k1,k2,...    select categories
  links             add links, one key=value per line, end with a single "."
  confirm           submit the claim
  cancel            discard the claim
  help              show this help
  quit              leave without submitting`

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Build a multi-category XP claim interactively",
	Long: `Start the XP claim wizard on the terminal. The wizard pulls the claim
context, then reads one command per line from stdin.

` + wizardHelp,
	Args: cobra.NoArgs,
	RunE: runWizard,
}

func init() {
	rootCmd.AddCommand(wizardCmd)

	wizardCmd.Flags().StringVar(&wizardUser, "user", "terminal", "user ID owning the draft")
	wizardCmd.Flags().StringVar(&wizardCharacter, "character", "", "preselect a character")
	wizardCmd.Flags().StringVar(&wizardPeriod, "period", "", "preselect a play period")
}

func runWizard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	machine := newServices().machine()
	draft, err := machine.Start(ctx, wizardUser, wizardCharacter, wizardPeriod)
	if err != nil {
		return fmt.Errorf("%s: %w", wizard.UserMessage(err), err)
	}

	r := &closingRenderer{TextRenderer: wizard.NewTextRenderer(out, machine.PageSize(), machine.ModalFieldLimit())}
	if err := r.Render(draft, false); err != nil {
		return err
	}
	fmt.Fprintln(out, `Type "help" for commands.`)

	src := newLineSource(cmd.InOrStdin(), out, wizardUser, r)
	return machine.Run(ctx, src, r)
}

// closingRenderer remembers when a draft was rendered as closed
type closingRenderer struct {
	*wizard.TextRenderer
	closed bool
}

func (r *closingRenderer) Render(d *wizard.Draft, disabled bool) error {
	if disabled {
		r.closed = true
	}
	return r.TextRenderer.Render(d, disabled)
}

// lineSource turns terminal lines into wizard events
type lineSource struct {
	scanner *bufio.Scanner
	out     io.Writer
	userID  string
	state   *closingRenderer
}

func newLineSource(in io.Reader, out io.Writer, userID string, state *closingRenderer) *lineSource {
	return &lineSource{
		scanner: bufio.NewScanner(in),
		out:     out,
		userID:  userID,
		state:   state,
	}
}

// Next returns io.EOF on end of input, on quit and once the draft is closed
func (s *lineSource) Next(ctx context.Context) (wizard.Envelope, error) {
	for {
		if err := ctx.Err(); err != nil {
			return wizard.Envelope{}, err
		}
		if s.state != nil && s.state.closed {
			return wizard.Envelope{}, io.EOF
		}

		line, err := s.readLine()
		if err != nil {
			return wizard.Envelope{}, err
		}

		ev, err := s.parse(line)
		if errors.Is(err, io.EOF) {
			return wizard.Envelope{}, io.EOF
		}
		if err != nil {
			fmt.Fprintf(s.out, "> %v\n", err)
			continue
		}
		if ev == nil {
			continue
		}
		return wizard.Envelope{UserID: s.userID, Event: ev}, nil
	}
}

func (s *lineSource) readLine() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.scanner.Text()), nil
}

// parse returns a nil event for lines that need no dispatch
func (s *lineSource) parse(line string) (wizard.Event, error) {
	if line == "" {
		return nil, nil
	}

	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "char", "character":
		switch rest {
		case "":
			return nil, fmt.Errorf("usage: char <name|next|prev|none>")
		case "next":
			return wizard.PageCharacter{Delta: 1}, nil
		case "prev":
			return wizard.PageCharacter{Delta: -1}, nil
		case "none":
			return wizard.SelectCharacter{Value: wizard.NoneValue}, nil
		}
		return wizard.SelectCharacter{Value: rest}, nil

	case "period":
		switch rest {
		case "":
			return nil, fmt.Errorf("usage: period <label|next|prev|none>")
		case "next":
			return wizard.PagePeriod{Delta: 1}, nil
		case "prev":
			return wizard.PagePeriod{Delta: -1}, nil
		case "none":
			return wizard.SelectPeriod{Value: wizard.NoneValue}, nil
		}
		return wizard.SelectPeriod{Value: rest}, nil

	case "cats", "categories":
		var keys []string
		for _, k := range strings.Split(rest, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		return wizard.SelectCategories{Keys: keys}, nil

	case "links":
		text, err := s.readBlock()
		if err != nil {
			return nil, err
		}
		return wizard.SubmitLinks{Text: text}, nil

	case "confirm", "submit":
		return wizard.Confirm{}, nil

	case "cancel":
		return wizard.Cancel{}, nil

	case "help":
		fmt.Fprintln(s.out, wizardHelp)
		return nil, nil

	case "quit", "exit":
		return nil, io.EOF
	}

	return nil, fmt.Errorf("unknown command %q, type help", verb)
}

// readBlock collects lines up to a line holding a single "."
func (s *lineSource) readBlock() (string, error) {
	var b strings.Builder
	for {
		line, err := s.readLine()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		if line == "." {
			return b.String(), nil
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}
