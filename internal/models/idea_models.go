package models

type Source string

const (
	SourceBatch      Source = "batch"
	SourceIndividual Source = "individual"
)

// Idea is one submitted free-text item. Text is kept at its source length.
type Idea struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

func NewBatchIdea(text string) Idea {
	return Idea{Text: text, Source: SourceBatch}
}

func NewIndividualIdea(text string) Idea {
	return Idea{Text: text, Source: SourceIndividual}
}
