package models

import "time"

type Status string

const (
	StatusProposed     Status = "proposed"
	StatusInDiscussion Status = "in-discussion"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
)

type Discussion struct {
	ID            string
	Title         string
	Status        Status
	Answers       Answers
	CurrentPrompt string // prompt id; empty once the interview is complete
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Complete reports whether every prompt has been answered.
func (d *Discussion) Complete() bool {
	return d.CurrentPrompt == ""
}

func (d *Discussion) Clone() *Discussion {
	c := *d
	c.Answers = d.Answers.Clone()
	return &c
}

type Exchange struct {
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

type Context struct {
	PreviousDecisions    []string   `json:"previousDecisions"`
	RelatedFeatures      []string   `json:"relatedFeatures"`
	TechnicalConstraints []string   `json:"technicalConstraints"`
	ConversationHistory  []Exchange `json:"conversationHistory"`
}

func NewContext() *Context {
	return &Context{
		PreviousDecisions:    []string{},
		RelatedFeatures:      []string{},
		TechnicalConstraints: []string{},
		ConversationHistory:  []Exchange{},
	}
}

func (c *Context) Clone() *Context {
	return &Context{
		PreviousDecisions:    cloneStrings(c.PreviousDecisions),
		RelatedFeatures:      cloneStrings(c.RelatedFeatures),
		TechnicalConstraints: cloneStrings(c.TechnicalConstraints),
		ConversationHistory:  append([]Exchange{}, c.ConversationHistory...),
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s...)
}
