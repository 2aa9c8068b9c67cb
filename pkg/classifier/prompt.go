package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ledgermap/ledgermap-engine/pkg/catalog"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

// maxPromptSampleRecords bounds how many raw records are shown to the model.
const maxPromptSampleRecords = 3

func buildSystemMessage() string {
	return "You are a data migration expert mapping messy spreadsheet-derived business records " +
		"onto a fixed relational schema. Field names may be inconsistent, abbreviated or in Bengali. " +
		"Only use table and column names from the provided catalog. Return valid JSON only, " +
		"with no additional text or explanation."
}

// buildPrompt renders the full target catalog, per-field annotations with
// sample values, and up to three raw sample records.
func buildPrompt(a *models.CollectionAnalysis) string {
	var b strings.Builder

	b.WriteString("# Schema Mapping Task\n\n")
	fmt.Fprintf(&b, "Source collection: `%s` (%d documents, %d sampled)\n\n",
		a.CollectionID, a.DocumentCount, a.SampleSize)

	b.WriteString("## Target Catalog\n\n")
	b.WriteString("These are the ONLY valid tables and columns. ")
	b.WriteString("Do NOT invent tables or columns that are not listed here. ")
	b.WriteString("Never map source fields onto `business_id` or any other `*_id` key column ")
	b.WriteString("(except `product_id`); those values are assigned by the migration engine.\n\n")
	for _, table := range catalog.Tables() {
		fmt.Fprintf(&b, "- `%s`: %s\n", table, strings.Join(catalog.Columns(table), ", "))
	}
	b.WriteString("\n")

	b.WriteString("## Source Fields\n\n")
	for _, f := range a.Fields {
		fmt.Fprintf(&b, "- `%s` (normalized: %s, type: %s", f.Name, f.NormalizedName, f.InferredType)
		if f.SemanticCategory != "" {
			fmt.Fprintf(&b, ", concept: %s/%s", f.SemanticCategory, f.SemanticSubtype)
		}
		if f.IsFinanceRelated {
			b.WriteString(", finance-related")
		}
		b.WriteString(")")
		if len(f.SampleValues) > 0 {
			fmt.Fprintf(&b, " samples: %s", strings.Join(f.SampleValues, " | "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("## Sample Records\n\n")
	n := len(a.SampleDocuments)
	if n > maxPromptSampleRecords {
		n = maxPromptSampleRecords
	}
	for i := 0; i < n; i++ {
		if raw, err := json.Marshal(a.SampleDocuments[i]); err == nil {
			fmt.Fprintf(&b, "%s\n", raw)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Your Task\n\n")
	b.WriteString("Decide which target table(s) this collection maps to and map each source field ")
	b.WriteString("to a target column. A collection may describe zero, one or several tables. ")
	b.WriteString("Report fields you cannot map under `unmapped_fields`.\n\n")
	b.WriteString("**Output Format:**\n")
	b.WriteString("```json\n")
	b.WriteString("{\n")
	b.WriteString("  \"tables\": [\n")
	b.WriteString("    {\n")
	b.WriteString("      \"table_name\": \"product\",\n")
	b.WriteString("      \"confidence\": 0.9,\n")
	b.WriteString("      \"reasoning\": \"inventory sheet with stock counts\",\n")
	b.WriteString("      \"field_mappings\": [\n")
	b.WriteString("        {\"source_field\": \"Item Name\", \"target_field\": \"product_name\", \"confidence\": 0.95}\n")
	b.WriteString("      ],\n")
	b.WriteString("      \"relationships\": [\n")
	b.WriteString("        {\"related_table\": \"brand\", \"key\": \"brand_id\"}\n")
	b.WriteString("      ]\n")
	b.WriteString("    }\n")
	b.WriteString("  ],\n")
	b.WriteString("  \"unmapped_fields\": [\n")
	b.WriteString("    {\"field_name\": \"Internal Ref\", \"reason\": \"no matching column\"}\n")
	b.WriteString("  ]\n")
	b.WriteString("}\n")
	b.WriteString("```\n\n")
	b.WriteString("Begin your analysis now.\n")

	return b.String()
}
