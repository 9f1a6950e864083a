package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/illarion/passlane/internal/core"
)

// Grep searches credentials by service and copies the chosen password to
// the clipboard. Ambiguous results are listed with masked passwords unless
// verbose is set.
func Grep(ctx context.Context, env *Env, query string, verbose bool) {
	v := OpenOrExit(ctx, env)

	switch m := v.Search(query, verbose).(type) {
	case core.NoMatch:
		fmt.Println("No matches found")
		if suggestions := v.Suggest(query, 3); len(suggestions) > 0 {
			fmt.Printf("Did you mean: %s?\n", strings.Join(suggestions, ", "))
		}
		os.Exit(1)
	case core.SingleMatch:
		printViews([]core.RecordView{viewOf(m.Record, verbose)})
		if copyToClipboard(env, m.Record.Password) {
			fmt.Println("Password copied to clipboard!")
		} else if !verbose {
			fmt.Println(m.Record.Password)
		}
	case *core.MultiMatch:
		fmt.Printf("Found %d matches:\n", m.Len())
		printViews(m.Views())

		i, err := core.AskIndex("To copy one of these passwords to clipboard, enter a row number from the table above, or press q to exit: ", m.Len())
		if err != nil {
			HandleError(err)
		}
		r, err := m.Select(i)
		if err != nil {
			HandleError(err)
		}
		if copyToClipboard(env, r.Password) {
			fmt.Printf("Password from index %d copied to clipboard!\n", i)
		}
	}
}

func viewOf(r core.Record, verbose bool) core.RecordView {
	view := core.RecordView{
		Service:   r.Service,
		Username:  r.Username,
		Password:  r.Password,
		UpdatedAt: r.UpdatedAt,
	}
	if !verbose {
		view.Password = core.MaskedPassword
		view.Masked = true
	}
	return view
}

func printViews(views []core.RecordView) {
	fmt.Printf("  %-3s %-30s %-30s %s\n", "#", "SERVICE", "USERNAME", "PASSWORD")
	for i, view := range views {
		fmt.Printf("  %-3d %-30s %-30s %s\n", i, view.Service, view.Username, view.Password)
	}
}
