package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"tweetcrawl/pkg/auth"
	"tweetcrawl/pkg/ui"
)

func newAuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Twitter API credentials",
		Long: `Manage stored Twitter API credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - TWEETCRAWL_* environment variables (read only)

Never share your credentials or config files!`,
	}

	authCmd.AddCommand(newLoginCmd())
	authCmd.AddCommand(newLogoutCmd())
	authCmd.AddCommand(newListCmd())

	return authCmd
}

func newLoginCmd() *cobra.Command {
	var helpKeys bool

	cmd := &cobra.Command{
		Use:   "login [name]",
		Short: "Store API credentials securely",
		Long: `Store API credentials in the system keychain or an encrypted file.

You will be prompted for:
  - An account name (if not provided)
  - Consumer key and secret
  - Access token and secret
  - Bearer token (optional when the four values above are set)

Secrets are hidden as you type.`,
		Example: `  # Interactive login
  tweetcrawl auth login

  # Login under a given name
  tweetcrawl auth login research

  # Show where to find the keys
  tweetcrawl auth login --help-keys`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if helpKeys {
				auth.ShowCredentialGuide(cmd.OutOrStdout())
				return nil
			}
			return runLogin(cmd, args)
		},
	}

	cmd.Flags().BoolVar(&helpKeys, "help-keys", false, "show how to obtain API keys")
	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := newCredentialManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)

	if !ui.IsQuietMode() {
		auth.ShowQuickGuide(out)
		fmt.Fprintln(out)
	}

	name := ""
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}
	if name == "" {
		if name, err = p.line("Account name: "); err != nil {
			return fmt.Errorf("failed to read account name: %w", err)
		}
	}
	if name == "" {
		return errors.New("account name is required")
	}

	if existing, _ := manager.Retrieve(name); existing != nil {
		answer, _ := p.line(fmt.Sprintf("Account '%s' already exists. Update credentials? (y/N): ", name))
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	account := &auth.Account{Name: name}
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Consumer key: ", &account.ConsumerKey},
		{"Consumer secret: ", &account.ConsumerSecret},
		{"Access token: ", &account.AccessToken},
		{"Access token secret: ", &account.AccessSecret},
		{"Bearer token (Enter to skip): ", &account.BearerToken},
	}
	for _, f := range fields {
		if *f.dst, err = p.secret(f.prompt); err != nil {
			return fmt.Errorf("failed to read %s: %w", strings.TrimSuffix(f.prompt, ": "), err)
		}
	}

	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	ui.PrintSuccess("Account saved: " + name)
	fmt.Fprintln(out, "\nStart a crawl with:")
	fmt.Fprintf(out, "  tweetcrawl crawl -t timeline <screen_name> --account %s\n", name)
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "logout <name>",
		Short:   "Remove stored credentials",
		Example: `  tweetcrawl auth logout research`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newCredentialManager()
			if err != nil {
				return fmt.Errorf("failed to initialize credential manager: %w", err)
			}
			if err := manager.Delete(args[0]); err != nil {
				return fmt.Errorf("failed to remove account: %w", err)
			}
			ui.PrintSuccess("Account removed: " + args[0])
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored accounts",
		Long:  `List all stored accounts with masked credentials.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newCredentialManager()
			if err != nil {
				return fmt.Errorf("failed to initialize credential manager: %w", err)
			}

			accounts, err := manager.List()
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(accounts) == 0 {
				fmt.Fprintln(out, "No stored accounts. Use 'tweetcrawl auth login' to add one.")
				return nil
			}

			ui.PrintHighlight("Stored Accounts")
			renderAccounts(out, accounts)
			return nil
		},
	}
}

// renderAccounts writes accounts as a table with masked secrets
func renderAccounts(w io.Writer, accounts []*auth.Account) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Name", "Consumer Key", "Access Token", "Bearer Token", "Last Modified"})

	for _, account := range accounts {
		s := auth.SanitizeAccount(account)
		modified := ""
		if !s.LastModified.IsZero() {
			modified = s.LastModified.Format("2006-01-02 15:04:05")
		}
		t.AppendRow(table.Row{s.Name, s.ConsumerKey, s.AccessToken, s.BearerToken, modified})
	}

	t.Render()
}

// prompter reads answers from in, hiding secrets when in is a terminal
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, reader: bufio.NewReader(in), out: out}
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	input, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func (p *prompter) secret(prompt string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, prompt)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}
	return p.line(prompt)
}
