package descriptions

// Tool descriptions shown to MCP clients, with examples and workflows

const (
	SearchPersonDescription = `Look up a naturalized person in the decrees recorded from the Journal Officiel (JORF).

**When to use:** Need to know whether, and by which decree, a person was naturalized French.

**Examples:**
• Known series: "Search last_name Dupont, first_name Jean in series 027"
• Unknown series: "Search last_name Villarreal in every series"
• Partial names: "Search last_name 'ben' to list every BEN-* entry (limit 20)"

**Matching:** both names are case-insensitive substrings of the printed name "LASTNAME (Firstnames)". Persons are returned in the order their decrees were processed.

**Common workflows:**
1. Lookup: jorf_process_folder for the series → jorf_search_person
2. No result: check jorf_series_stats to see how far the series has been processed`

	ProcessFolderDescription = `Read the JORF PDFs of a folder and record the naturalized persons of one series.

**When to use:** New gazette issues were downloaded from legifrance.gouv.fr, or a series was never processed.

**Examples:**
• Default folder and series: "Process the JOs folder"
• Another series: "Process the JOs folder for series 031"
• After a parser change: "Process series 027 again with force"

**Behavior:** documents already processed for the series are skipped; documents read for another series reuse their cached decree text; the state is saved after each document. A document without the expected decree markers is reported and the run continues.`

	SeriesStatsDescription = `Count the recorded persons and processed decrees per series.

**When to use:** Check which series have data and how many decrees each one covers.

**Examples:**
• Overview: "Show series statistics"
• Every series, including empty ones: "Show statistics for all series"`

	ListDecreesDescription = `List the decrees processed for a series, by decree date, with the PDF each one came from.

**When to use:** Find the latest processed gazette for a series, or the source document of a decree date.

**Examples:**
• "List the decrees of series 027"
• "Which PDF holds the decree of 17/03/2020?"`

	ServerInfoDescription = `Get server information: JOs folder, default series, dossier year token, state store and available tools.

**When to use:** Start here to learn the configuration before searching or processing.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"jorf_search_person":  SearchPersonDescription,
	"jorf_process_folder": ProcessFolderDescription,
	"jorf_series_stats":   SeriesStatsDescription,
	"jorf_list_decrees":   ListDecreesDescription,
	"jorf_server_info":    ServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// Summary returns the first line of a tool description
func Summary(toolName string) string {
	desc := GetToolDescription(toolName)
	for i, r := range desc {
		if r == '\n' {
			return desc[:i]
		}
	}
	return desc
}
