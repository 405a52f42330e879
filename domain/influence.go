package domain

import "time"

// InfluenceType classifies a marketing influence activity.
type InfluenceType string

const (
	InfluenceSATraining         InfluenceType = "SA_TRAINING"
	InfluenceLogo               InfluenceType = "LOGO"
	InfluenceCaseStudy          InfluenceType = "CASE_STUDY"
	InfluenceCompetitorAnalysis InfluenceType = "COMPETITOR_ANALYSIS"
	InfluenceDemo               InfluenceType = "DEMO"
	InfluenceConferenceSharing  InfluenceType = "CONFERENCE_SHARING"
)

func (t InfluenceType) Valid() bool {
	switch t {
	case InfluenceSATraining, InfluenceLogo, InfluenceCaseStudy,
		InfluenceCompetitorAnalysis, InfluenceDemo, InfluenceConferenceSharing:
		return true
	}
	return false
}

// InfluenceStatus tracks an event from planning to completion.
type InfluenceStatus string

const (
	InfluencePlanned    InfluenceStatus = "PLANNED"
	InfluenceInProgress InfluenceStatus = "IN_PROGRESS"
	InfluenceCompleted  InfluenceStatus = "COMPLETED"
	InfluenceCancelled  InfluenceStatus = "CANCELLED"
)

func (s InfluenceStatus) Valid() bool {
	switch s {
	case InfluencePlanned, InfluenceInProgress, InfluenceCompleted, InfluenceCancelled:
		return true
	}
	return false
}

// InfluenceEvent records a company influence activity (trainings, demos, talks).
type InfluenceEvent struct {
	ID         string          `json:"id" yaml:"id"`
	Name       string          `json:"name" yaml:"name"`
	Type       InfluenceType   `json:"type" yaml:"type"`
	Status     InfluenceStatus `json:"status" yaml:"status"`
	EventTime  *time.Time      `json:"eventTime" yaml:"eventTime"`
	Link       string          `json:"link,omitempty" yaml:"link,omitempty"`
	Remark     string          `json:"remark,omitempty" yaml:"remark,omitempty"`
	ImageURLs  []string        `json:"imageUrls" yaml:"imageUrls"`
	CreateTime *time.Time      `json:"createTime,omitempty" yaml:"createTime,omitempty"`
	UpdateTime *time.Time      `json:"updateTime,omitempty" yaml:"updateTime,omitempty"`
}

func (e *InfluenceEvent) RecordID() string { return e.ID }

// OwnerKey groups events by name; events carry no customer.
func (e *InfluenceEvent) OwnerKey() string { return e.Name }

func (e *InfluenceEvent) Created() *time.Time { return e.CreateTime }

func (e *InfluenceEvent) IsCompleted() bool {
	return e != nil && e.Status == InfluenceCompleted
}

func (e *InfluenceEvent) StampCreated(now time.Time) {
	if e.CreateTime == nil {
		e.CreateTime = &now
	}
	if e.ImageURLs == nil {
		e.ImageURLs = []string{}
	}
}

func (e *InfluenceEvent) SetCreated(t *time.Time) { e.CreateTime = t }

func (e *InfluenceEvent) StampUpdated(now time.Time) {
	e.UpdateTime = &now
}

// Clone returns a deep copy.
func (e *InfluenceEvent) Clone() *InfluenceEvent {
	if e == nil {
		return nil
	}
	out := *e
	out.EventTime = cloneTime(e.EventTime)
	out.CreateTime = cloneTime(e.CreateTime)
	out.UpdateTime = cloneTime(e.UpdateTime)
	if e.ImageURLs != nil {
		out.ImageURLs = make([]string, len(e.ImageURLs))
		copy(out.ImageURLs, e.ImageURLs)
	}
	return &out
}
