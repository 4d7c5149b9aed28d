package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/scubot/tagbot/internal/ui"
)

type routeData struct {
	Template string   `json:"template"`
	Captures int      `json:"captures"`
	Untyped  int      `json:"untyped"`
	Required []string `json:"required,omitempty"`
	Optional []string `json:"optional,omitempty"`
}

func newRoutesCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List registered routes in match order",
		Long: `List every registered route in the order dispatch tries them.

Routes with fewer captures come first; among equal capture counts, routes
with fewer untyped captures come first; ties keep registration order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := o.openApp()
			if err != nil {
				return o.appError(out, err)
			}
			defer a.Close()

			rules := a.registry.Rules()
			if o.jsonOutput {
				data := make([]routeData, 0, len(rules))
				for _, rule := range rules {
					key := rule.Key()
					params := rule.Handler().Params()
					data = append(data, routeData{
						Template: rule.Template(),
						Captures: key.Captures,
						Untyped:  key.Untyped,
						Required: params.Required,
						Optional: params.Optional,
					})
				}
				outputSuccess(out, data, &Meta{Count: len(data)})
				return nil
			}

			fmt.Fprintf(out, "%s %s\n\n", ui.Header("Routes"), ui.Hint(ui.Count(len(rules), "route", "routes")))
			tbl := ui.NewTable(3)
			for i, rule := range rules {
				tbl.AddRow(ui.Hint(strconv.Itoa(i+1)), ui.Template(rule.Route().String()), ui.Hint(rule.Key().String()))
			}
			fmt.Fprint(out, tbl.String())
			return nil
		},
	}
}
