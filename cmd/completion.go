package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_passlane() {
    local cur prev words cword
    _init_completion || return

    local commands="generate save grep sync import rm passwd status keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        generate)
            COMPREPLY=($(compgen -W "-length" -- "$cur"))
            ;;
        save)
            COMPREPLY=($(compgen -W "-g -clipboard -keychain" -- "$cur"))
            ;;
        grep)
            COMPREPLY=($(compgen -W "-v" -- "$cur"))
            ;;
        sync)
            COMPREPLY=($(compgen -W "-service -username -reconcile" -- "$cur"))
            ;;
        import)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-keychain" -- "$cur"))
            else
                _filedir csv
            fi
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _passlane passlane
`

const zshCompletion = `#compdef passlane

_passlane() {
    local -a commands
    commands=(
        'generate:Generate a random password'
        'save:Save a credential'
        'grep:Find credentials by service'
        'sync:Mirror credentials to the OS keychain'
        'import:Import credentials from a CSV file'
        'rm:Remove a credential'
        'passwd:Change the master password'
        'status:Show vault status'
        'keyring:Manage the master password in the OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'passlane commands' commands
            ;;
        args)
            case "${words[2]}" in
                generate)
                    _arguments '-length[Password length]:length'
                    ;;
                save)
                    _arguments \
                        '-g[Generate the password]' \
                        '-clipboard[Read the password from the clipboard]' \
                        '-keychain[Also save to the OS keychain]'
                    ;;
                grep)
                    _arguments '-v[Show passwords]' '1:query'
                    ;;
                sync)
                    _arguments \
                        '-service[Sync one service]:service' \
                        '-username[Username of the record]:username' \
                        '-reconcile[Repair sync state from the keychain]'
                    ;;
                import)
                    _arguments '-keychain[Also sync to the OS keychain]' '1:csv file:_files -g "*.csv"'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'passlane commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_passlane "$@"
`

const fishCompletion = `# passlane fish completions

set -l commands generate save grep sync import rm passwd status keyring help completion

complete -c passlane -f

# Commands
complete -c passlane -n "not __fish_seen_subcommand_from $commands" -a generate -d 'Generate a random password'
complete -c passlane -n "not __fish_seen_subcommand_from $commands" -a save -d 'Save a credential'
complete -c passlane -n "not __fish_seen_subcommand_from $commands" -a grep -d 'Find credentials'
complete -c passlane -n "not __fish_seen_subcommand_from $commands" -a sync -d 'Mirror to OS keychain'
complete -c passlane -n "not __fish_seen_subcommand_from $commands" -a import -d 'Import from CSV'
complete -c passlane -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Remove a credential'
complete -c passlane -n "not __fish_seen_subcommand_from $commands" -a passwd -d 'Change master password'
complete -c passlane -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show vault status'
complete -c passlane -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage master password in OS keyring'
complete -c passlane -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c passlane -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

complete -c passlane -n "__fish_seen_subcommand_from generate" -o length -d 'Password length'
complete -c passlane -n "__fish_seen_subcommand_from save" -o g -d 'Generate the password'
complete -c passlane -n "__fish_seen_subcommand_from save" -o clipboard -d 'Read password from clipboard'
complete -c passlane -n "__fish_seen_subcommand_from save" -o keychain -d 'Also save to keychain'
complete -c passlane -n "__fish_seen_subcommand_from grep" -o v -d 'Show passwords'
complete -c passlane -n "__fish_seen_subcommand_from sync" -o service -d 'Sync one service'
complete -c passlane -n "__fish_seen_subcommand_from sync" -o username -d 'Username of the record'
complete -c passlane -n "__fish_seen_subcommand_from sync" -o reconcile -d 'Repair sync state'
complete -c passlane -n "__fish_seen_subcommand_from import" -o keychain -d 'Also sync to keychain'
complete -c passlane -n "__fish_seen_subcommand_from import" -F

# keyring subcommands
complete -c passlane -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c passlane -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c passlane -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
