package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agentic-research/spreadjson/internal/source"
	"github.com/agentic-research/spreadjson/spread"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [data]",
	Short: "Print the rules derived from a data file as a binding document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := absPath(args[0])
		if err != nil {
			return err
		}
		data, err := source.Load(hostFS(), p)
		if err != nil {
			return err
		}
		out, err := autoBinding(data)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

// autoBinding renders the derived rules for data as a YAML binding document.
func autoBinding(data any) ([]byte, error) {
	rules := &yaml.Node{Kind: yaml.MappingNode}
	for p := spread.AutoRules(data).Oldest(); p != nil; p = p.Next() {
		rules.Content = append(rules.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(p.Value)},
		)
	}
	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: "version"},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: "v1"},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: "rules"},
		rules,
	}}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
