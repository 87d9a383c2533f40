package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/staranto/gwsctl/internal/meta"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `# bash completion for gwsctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_gwsctl()
{
    local cur prev cmd sub
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "auth calendar gmail sheets docs ai cache config interactive completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --no-cache --tldr"

    if [[ ${COMP_CWORD} -eq 2 ]]; then
        case "$cmd" in
        auth)     local subs="login logout status" ;;
        calendar) local subs="list get search create delete calendars create-calendar insights analytics slots smart-create" ;;
        gmail)    local subs="list get search send delete read unread labels insights" ;;
        sheets)   local subs="list info read write append clear create add-sheet" ;;
        docs)     local subs="list get info search create update delete export" ;;
        ai)       local subs="ask summarize smart-reply insights" ;;
        cache)    local subs="status stats clear vacuum configure" ;;
        config)   local subs="get set list reset save export import validate edit" ;;
        completion) local subs="bash zsh" ;;
        *)        local subs="" ;;
        esac
        COMPREPLY=( $(compgen -W "$subs" -- "$cur") )
        return 0
    fi

    sub=${COMP_WORDS[2]}
    case "$cmd $sub" in
    "calendar list")
      local opts="$common --schema --calendar --from --to --days --max -m"
        ;;
    "calendar create")
      local opts="$common --calendar --summary --description --location --start --end --duration --timezone --attendee --notify"
        ;;
    "calendar smart-create")
      local opts="$common --summary --description --duration --attendee"
        ;;
    "gmail list")
      local opts="$common --schema --query -q --max -m"
        ;;
    "gmail send")
      local opts="$common --to --cc --subject --body"
        ;;
    "sheets write"|"sheets append")
      local opts="$common --values"
        ;;
    "docs export")
      local opts="$common --format --out"
        ;;
    "cache clear"|"cache stats")
      local opts="--service"
        ;;
    "cache configure")
      local opts="--ttl --dir --enabled --disabled"
        ;;
    *)
        local opts="$common --schema"
        ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

  COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
  return 0
}

complete -F _gwsctl gwsctl
`

const zshCompletionScript = `#compdef gwsctl

_gwsctl() {
  local -a cmds
  cmds=(
    'auth:authenticate against Google Workspace'
    'calendar:query and manage Google Calendar'
    'gmail:query and manage Gmail'
    'sheets:query and manage Google Sheets'
    'docs:query and manage Google Docs'
    'ai:heuristics over mail and calendar'
    'cache:inspect and manage the response cache'
    'config:read and mutate the config file'
    'interactive:browse common queries in a menu'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--no-cache[bypass the response cache]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'gwsctl commands' cmds
    return
  fi

  case $words[2] in
    auth)
      _arguments '2: :((login logout status))'
      ;;
    calendar)
      _arguments \
        '2: :((list get search create delete calendars create-calendar insights analytics slots smart-create))' \
        $common \
        '--calendar[calendar to operate on]:calendar' \
        '--from[window start]:spec' \
        '--to[window end]:spec' \
        '--days[window length]:days' \
        '(-m --max)'{-m,--max}'[maximum results]:count'
      ;;
    gmail)
      _arguments \
        '2: :((list get search send delete read unread labels insights))' \
        $common \
        '(-q --query)'{-q,--query}'[Gmail search expression]:query' \
        '(-m --max)'{-m,--max}'[maximum results]:count'
      ;;
    sheets)
      _arguments \
        '2: :((list info read write append clear create add-sheet))' \
        $common \
        '--values[rows separated by ; cells by ,]:values' \
        '(-m --max)'{-m,--max}'[maximum results]:count'
      ;;
    docs)
      _arguments \
        '2: :((list get info search create update delete export))' \
        $common \
        '--format[export format]:format:(text html pdf docx)' \
        '(-m --max)'{-m,--max}'[maximum results]:count'
      ;;
    ai)
      _arguments \
        '2: :((ask summarize smart-reply insights))' \
        $common \
        '--period[day, week, or month]:period:(day week month)'
      ;;
    cache)
      _arguments \
        '2: :((status stats clear vacuum configure))' \
        '--service[service namespace]:service:(calendar gmail sheets docs)' \
        '--ttl[entry lifetime in seconds]:seconds' \
        '--dir[store directory]:directory:_directories'
      ;;
    config)
      _arguments '2: :((get set list reset save export import validate edit))'
      ;;
    completion)
      _arguments '2: :((bash zsh))'
      ;;
    *)
      _arguments $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _gwsctl gwsctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(os.Stdout, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(os.Stdout, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: gwsctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "gwsctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
