package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List configured profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		names := make([]string, 0, len(cfg.Profiles))
		for name := range cfg.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			p := cfg.Profiles[name]
			fmt.Printf("%s %s\n", styleValue.Render(name), styleLabel.Render(p.Host))
			fmt.Printf("  %s %ds poll, %ds refresh\n",
				styleLabel.Render("intervals:"), int(p.PollEvery().Seconds()), int(p.RefreshEvery().Seconds()))
			if len(p.LogTypes) > 0 {
				fmt.Printf("  %s %v\n", styleLabel.Render("log types:"), p.LogTypes)
			}
		}
		return nil
	},
}
