// Package report renders discovery results for humans: a markdown summary,
// optionally converted to standalone HTML.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"causemap/domain/causal"
	"causemap/engine"
)

// Markdown renders a discovery result as a markdown document.
func Markdown(result *engine.DiscoveryResult) string {
	var b strings.Builder
	g := result.Graph

	fmt.Fprintf(&b, "# Causal discovery report\n\n")
	fmt.Fprintf(&b, "Run `%s`, completed in %s.\n\n", result.RunID, result.Elapsed.Round(1e6))

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Nodes | %d |\n", len(g.Nodes))
	fmt.Fprintf(&b, "| Edges | %d |\n", len(g.Edges))
	fmt.Fprintf(&b, "| Fit score (mean R²) | %.3f |\n", result.FitScore)
	fmt.Fprintf(&b, "| BIC | %.2f |\n", result.ComplexityPenalty)
	fmt.Fprintf(&b, "| Overall confidence | %.2f |\n", result.OverallConfidence)
	fmt.Fprintf(&b, "| Acyclic | %t |\n\n", result.Validation.IsAcyclic)

	fmt.Fprintf(&b, "## Edges\n\n")
	if len(g.Edges) == 0 {
		fmt.Fprintf(&b, "No causal relationships discovered.\n\n")
	} else {
		fmt.Fprintf(&b, "| Edge | Strength | Confidence | Evidence |\n|---|---|---|---|\n")
		for _, tier := range []causal.Confidence{
			causal.ConfidenceEstablished,
			causal.ConfidenceProbable,
			causal.ConfidenceLearned,
			causal.ConfidenceHypothesized,
		} {
			for _, id := range g.EdgeIDs() {
				edge := g.Edges[id]
				if edge.Confidence != tier {
					continue
				}
				fmt.Fprintf(&b, "| %s → %s | %+.2f | %s | %d |\n",
					edge.Source, edge.Target, edge.Strength, edge.Confidence, edge.EvidenceCount)
			}
		}
		b.WriteString("\n")
	}

	if len(result.LowConfidenceEdges) > 0 {
		fmt.Fprintf(&b, "## Low-evidence edges\n\n")
		fmt.Fprintf(&b, "These edges have fewer than five supporting observations and should be treated as tentative:\n\n")
		ids := append([]causal.EdgeID(nil), result.LowConfidenceEdges...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			fmt.Fprintf(&b, "- `%s`\n", id)
		}
		b.WriteString("\n")
	}

	if !result.Validation.IsValid() {
		fmt.Fprintf(&b, "## Validation warnings\n\n")
		for _, node := range result.Validation.IsolatedNodes {
			fmt.Fprintf(&b, "- isolated node: `%s`\n", node)
		}
		for _, id := range result.Validation.TemporalViolations {
			fmt.Fprintf(&b, "- temporal-order violation: `%s`\n", id)
		}
		for _, id := range result.Validation.OutOfRangeEdges {
			fmt.Fprintf(&b, "- strength out of range: `%s`\n", id)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders the markdown report as a standalone HTML document.
func HTML(result *engine.DiscoveryResult) []byte {
	md := []byte(Markdown(result))
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Causal discovery report",
		Flags: html.CompletePage,
	})
	return markdown.ToHTML(md, p, renderer)
}
