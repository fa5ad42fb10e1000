package models

// ProfileContext is the assembled input for the model's system instruction:
// the static prompt template, prior conversation summaries, and
// questionnaire-derived preference text. It is recomputed from stored data,
// never persisted as a unit. Empty fields are valid; a ProfileContext is only
// produced once all of its sources have resolved.
type ProfileContext struct {
	SystemPrompt   string
	PriorSummaries string
	PreferenceText string
}
