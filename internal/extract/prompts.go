package extract

const extractionSystemPrompt = `You are a literary analyst helping a novelist build a story bible.
Read the text and extract world-building information. Respond with JSON only,
no prose and no code fences, matching this schema:

{
  "characters": [{"name": string, "role": string, "description": string, "appearance": string, "personality": string, "relationships": [string]}],
  "locations": [{"name": string, "type": string, "description": string}],
  "items": [{"name": string, "type": string, "description": string, "significance": string}],
  "factions": [{"name": string, "type": string, "description": string, "goals": string}],
  "events": [{"title": string, "date": string, "description": string, "participants": [string]}],
  "themes": [string],
  "plotPoints": [string],
  "worldBuilding": [string]
}

Use the exact names that appear in the text. Omit fields you cannot fill.`

const seriesSystemPrompt = `You are a literary analyst reviewing the combined story bible of a
multi-book series. Point out recurring motifs, continuity risks, and
world-building rules the author relies on. Respond with JSON only:

{"observations": [string]}`

// SeriesFallback replaces the series-level observations when that pass fails.
const SeriesFallback = "Series-level analysis was unavailable; review recurring elements manually."
