package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ytshorts/description"
	"ytshorts/internal/logging"
)

// fixture is a description and its annotations as captured from a watch page.
type fixture struct {
	Text        string              `json:"text"`
	BaseURL     string              `json:"base_url"`
	Annotations []fixtureAnnotation `json:"annotations"`
}

type fixtureAnnotation struct {
	Start   int    `json:"start"`
	Length  int    `json:"length"`
	Hashtag bool   `json:"hashtag"`
	URL     string `json:"url"`
}

func newDescribeCmd(flags *rootFlags) *cobra.Command {
	var asHTML bool
	cmd := &cobra.Command{
		Use:   "describe <file.json>",
		Short: "Link a description from a JSON fixture and print the result",
		Long: `Reads {"text", "base_url", "annotations": [{"start", "length", "hashtag", "url"}]}
and prints the linked description, or the original text when any annotation
cannot be placed. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return runDescribe(cmd.OutOrStdout(), r, flags.cfg.BaseURL, asHTML)
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "print the escaped feed HTML instead of the linked text")
	return cmd
}

func runDescribe(w io.Writer, r io.Reader, defaultBase string, asHTML bool) error {
	var fx fixture
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return fmt.Errorf("decode fixture: %w", err)
	}
	base := fx.BaseURL
	if base == "" {
		base = defaultBase
	}

	anns := make([]description.Annotation, len(fx.Annotations))
	for i, a := range fx.Annotations {
		anns[i] = description.Annotation{
			ApproxStart: a.Start,
			Length:      a.Length,
			IsHashtag:   a.Hashtag,
			Link:        description.ClassifyURL(a.URL),
		}
	}

	res := description.Reconstruct(fx.Text, anns,
		description.WithBaseURL(base),
		description.WithLogger(logging.Logger()),
	)
	logging.Logger().Info("description reconstructed",
		"result", res.Kind.String(),
		"annotations", len(anns),
		"unmatched", len(res.Unmatched),
	)

	out := res.Text
	if asHTML {
		out = res.HTML()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
