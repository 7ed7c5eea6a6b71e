package stage

// Source tells where a resolved stage came from.
type Source string

const (
	SourceCurrentMilestone  Source = "current_milestone"
	SourceFallbackMilestone Source = "fallback_milestone"
	SourceDayBased          Source = "day_based"
)

// Confidence is how sure the resolver is about the stage.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MaxTips caps the number of tips surfaced with a result.
const MaxTips = 3

// Stage is the display part of a reference entry.
type Stage struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Details     string `yaml:"details,omitempty" json:"details,omitempty"`
}

// FallbackMilestone names the recent milestone a fallback result was taken from.
type FallbackMilestone struct {
	Title   string `yaml:"title" json:"title"`
	DaysAgo int    `yaml:"days_ago" json:"days_ago"`
}

// Result is the resolved stage of a cycle. It is never persisted.
type Result struct {
	Stage             Stage              `yaml:"stage" json:"stage"`
	Source            Source             `yaml:"source" json:"source"`
	Confidence        Confidence         `yaml:"confidence" json:"confidence"`
	FallbackMilestone *FallbackMilestone `yaml:"fallback_milestone,omitempty" json:"fallback_milestone,omitempty"`
	Tips              []string           `yaml:"tips,omitempty" json:"tips,omitempty"`
	MilestoneType     string             `yaml:"milestone_type" json:"milestone_type"`
	CycleDay          int                `yaml:"cycle_day" json:"cycle_day"`
}

func newResult(e ReferenceEntry, src Source, conf Confidence, milestoneType string, day int) *Result {
	n := len(e.Tips)
	if n > MaxTips {
		n = MaxTips
	}
	tips := make([]string, n)
	copy(tips, e.Tips[:n])
	return &Result{
		Stage:         Stage{Name: e.Name, Description: e.Description, Details: e.Details},
		Source:        src,
		Confidence:    conf,
		Tips:          tips,
		MilestoneType: milestoneType,
		CycleDay:      day,
	}
}
