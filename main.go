package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/passlane/cmd"
	"github.com/illarion/passlane/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
		return
	case "completion":
		runCompletion(os.Args[2:])
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	env := cmd.NewEnv(cfg, log)

	switch os.Args[1] {
	case "generate":
		runGenerate(env, os.Args[2:])
	case "save":
		runSave(ctx, env, os.Args[2:])
	case "grep":
		runGrep(ctx, env, os.Args[2:])
	case "sync":
		runSync(ctx, env, os.Args[2:])
	case "import":
		runImport(ctx, env, os.Args[2:])
	case "rm":
		runRm(ctx, env, os.Args[2:])
	case "passwd":
		runPasswd(ctx, env, os.Args[2:])
	case "status":
		runStatus(ctx, env, os.Args[2:])
	case "keyring":
		runKeyring(ctx, env, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func parse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runGenerate(env *cmd.Env, args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	length := fs.Int("length", 0, "Password length (default PASSLANE_PASSWORD_LENGTH)")
	parse(fs, args)

	cmd.Generate(env, *length)
}

func runSave(ctx context.Context, env *cmd.Env, args []string) {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	generate := fs.Bool("g", false, "Generate the password")
	fromClipboard := fs.Bool("clipboard", false, "Read the password from the clipboard")
	keychain := fs.Bool("keychain", false, "Also save the credential to the OS keychain")
	parse(fs, args)

	if *generate && *fromClipboard {
		fmt.Fprintln(os.Stderr, "Error: -g and -clipboard are mutually exclusive")
		os.Exit(1)
	}

	cmd.Save(ctx, env, cmd.SaveOptions{
		Generate:  *generate,
		Clipboard: *fromClipboard,
		Keychain:  *keychain,
	})
}

func runGrep(ctx context.Context, env *cmd.Env, args []string) {
	fs := flag.NewFlagSet("grep", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Show passwords of all matches")
	parse(fs, args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: passlane grep [-v] <query>")
		os.Exit(1)
	}
	cmd.Grep(ctx, env, fs.Arg(0), *verbose)
}

func runSync(ctx context.Context, env *cmd.Env, args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	service := fs.String("service", "", "Sync only this service")
	username := fs.String("username", "", "Username of the record to sync")
	reconcile := fs.Bool("reconcile", false, "Repair the sync state from the keychain")
	parse(fs, args)

	if *reconcile {
		cmd.Reconcile(ctx, env)
		return
	}
	cmd.Sync(ctx, env, *service, *username)
}

func runImport(ctx context.Context, env *cmd.Env, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	keychain := fs.Bool("keychain", false, "Also sync imported credentials to the OS keychain")
	parse(fs, args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: passlane import [-keychain] <file.csv>")
		os.Exit(1)
	}
	cmd.Import(ctx, env, fs.Arg(0), *keychain)
}

func runRm(ctx context.Context, env *cmd.Env, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	parse(fs, args)

	cmd.Remove(ctx, env, fs.Args())
}

func runPasswd(ctx context.Context, env *cmd.Env, args []string) {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	parse(fs, args)

	cmd.Passwd(ctx, env)
}

func runStatus(ctx context.Context, env *cmd.Env, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	parse(fs, args)

	cmd.Status(ctx, env)
}

func runKeyring(ctx context.Context, env *cmd.Env, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: passlane keyring <save|delete|status>")
		os.Exit(1)
	}
	switch args[0] {
	case "save":
		cmd.KeyringSave(ctx, env)
	case "delete":
		cmd.KeyringDelete(ctx, env)
	case "status":
		cmd.KeyringStatus(ctx, env)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		os.Exit(1)
	}
}

func runCompletion(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: passlane completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("passlane - local password vault with OS keychain sync")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  passlane <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  generate    Generate a random password")
	fmt.Println("  save        Save a credential to the vault")
	fmt.Println("  grep        Find credentials by service and copy the password")
	fmt.Println("  sync        Mirror credentials to the OS keychain")
	fmt.Println("  import      Import credentials from a CSV file")
	fmt.Println("  rm          Remove a credential")
	fmt.Println("  passwd      Change the master password")
	fmt.Println("  status      Show vault status")
	fmt.Println("  keyring     Manage the master password in the OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  passlane save -g                # Save a credential with a generated password")
	fmt.Println("  passlane grep github            # Copy the github password")
	fmt.Println("  passlane import export.csv      # Import a browser export")
	fmt.Println("  passlane sync                   # Mirror everything to the keychain")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  PASSLANE_HOME, PASSLANE_PASSWORD, PASSLANE_KDF_ITERATIONS, PASSLANE_LOCK_TIMEOUT,")
	fmt.Println("  PASSLANE_KEYRING_TIMEOUT, PASSLANE_PASSWORD_LENGTH, PASSLANE_LOG_LEVEL")
	fmt.Println()
	fmt.Println("Use 'passlane help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "generate":
		fmt.Println("passlane generate [-length n]")
		fmt.Println()
		fmt.Println("Generates a random password with lower and upper case letters,")
		fmt.Println("digits and symbols, and copies it to the clipboard.")
	case "save":
		fmt.Println("passlane save [-g|-clipboard] [-keychain]")
		fmt.Println()
		fmt.Println("Asks for service and username and saves the credential.")
		fmt.Println("Saving an existing service and username replaces its password.")
		fmt.Println("The vault is created on first save.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -g          Generate the password")
		fmt.Println("  -clipboard  Read the password from the clipboard")
		fmt.Println("  -keychain   Also save the credential to the OS keychain")
	case "grep":
		fmt.Println("passlane grep [-v] <query>")
		fmt.Println()
		fmt.Println("Finds credentials whose service contains the query, ignoring case.")
		fmt.Println("A single match is copied to the clipboard. Several matches are listed")
		fmt.Println("most recent first with masked passwords, and you pick one by row number.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -v  Show passwords in the list")
	case "sync":
		fmt.Println("passlane sync [-service s [-username u]] [-reconcile]")
		fmt.Println()
		fmt.Println("Mirrors credentials into the OS keychain. Records already mirrored")
		fmt.Println("are skipped. A failure for one record does not stop the others.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -service    Sync only this service")
		fmt.Println("  -username   Username of the record to sync")
		fmt.Println("  -reconcile  Re-read the keychain and repair the stored sync state")
	case "import":
		fmt.Println("passlane import [-keychain] <file.csv>")
		fmt.Println()
		fmt.Println("Imports credentials from a CSV file with a header row naming the")
		fmt.Println("username, password and service columns in any order. Rows without")
		fmt.Println("service or password are skipped. Importing the same file twice")
		fmt.Println("changes nothing.")
	case "rm":
		fmt.Println("passlane rm <service> [username]")
		fmt.Println()
		fmt.Println("Removes a credential from the vault.")
	case "passwd":
		fmt.Println("passlane passwd")
		fmt.Println()
		fmt.Println("Changes the master password and re-encrypts the vault.")
	case "status":
		fmt.Println("passlane status")
		fmt.Println()
		fmt.Println("Shows vault location, record count, modification time and")
		fmt.Println("encryption parameters. Does not require a password.")
	case "keyring":
		fmt.Println("passlane keyring <save|delete|status>")
		fmt.Println()
		fmt.Println("Stores the master password in the OS keyring so that commands")
		fmt.Println("stop prompting for it.")
	case "completion":
		fmt.Println("passlane completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(passlane completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(passlane completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  passlane completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
