package progress

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	StageQuoteSent        = "quote_sent"
	StageDesignInfoNeeded = "design_info_needed"
	StageProduction       = "production"
	StageShipped          = "shipped"
	StageDelivered        = "delivered"
)

const (
	StepPending   = "pending"
	StepActive    = "active"
	StepCompleted = "completed"
)

type StepperStep struct {
	Key   string `json:"key"`
	State string `json:"state"`
}

type TasksProgress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Percent   int `json:"percent"`
}

// StageResult is the customer-facing lifecycle view of a folder. Stage,
// NextStep and NextStepOwner reflect manual overrides when set; the computed
// values are always returned alongside for diagnostics.
type StageResult struct {
	Stage            string        `json:"stage"`
	StageLabel       string        `json:"stage_label"`
	NextStep         string        `json:"next_step"`
	NextStepOwner    string        `json:"next_step_owner"`
	ComputedStage    string        `json:"computed_stage"`
	ComputedNextStep string        `json:"computed_next_step"`
	TasksProgress    TasksProgress `json:"tasks_progress"`
	StepperSteps     []StepperStep `json:"stepper_steps"`
}

var stageLabels = map[string]string{
	StageQuoteSent:        "Quote Ready",
	StageDesignInfoNeeded: "Design Info Needed",
	StageProduction:       "In Production",
	StageShipped:          "Shipped",
	StageDelivered:        "Delivered",
}

// StageLabel maps a raw stage value to its display label. Unknown values are
// title-cased with underscores replaced by spaces so manual overrides still
// render reasonably.
func StageLabel(stage string) string {
	if stage == "" {
		return "Getting Started"
	}
	if label, ok := stageLabels[stage]; ok {
		return label
	}
	words := strings.Split(strings.ReplaceAll(stage, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Resolve derives the folder's stage, next step, stepper and task progress.
// It is a pure function of its inputs; the override fields on the folder win
// over the computed stage and next step but never feed back into them.
func Resolve(folder Folder, quote *Quote, shipment Shipment, tasks []Task) StageResult {
	computedStage := computeStage(quote, shipment, tasks)
	computedNextStep, computedOwner := computeNextStep(quote, shipment, tasks)

	result := StageResult{
		Stage:            computedStage,
		NextStep:         computedNextStep,
		NextStepOwner:    string(computedOwner),
		ComputedStage:    computedStage,
		ComputedNextStep: computedNextStep,
		TasksProgress:    tasksProgress(tasks),
		StepperSteps:     stepperSteps(computedStage, quote, tasks),
	}

	if folder.Stage != "" {
		result.Stage = folder.Stage
	}
	if folder.NextStep != "" {
		result.NextStep = folder.NextStep
	}
	if folder.NextStepOwner != "" {
		result.NextStepOwner = folder.NextStepOwner
	}
	result.StageLabel = StageLabel(result.Stage)

	return result
}

// computeStage evaluates the lifecycle state machine in priority order; the
// first match wins. Delivery outranks everything else.
func computeStage(quote *Quote, shipment Shipment, tasks []Task) string {
	if shipment.ActualDeliveryDate != "" || normalizeStatus(shipment.Status) == "delivered" {
		return StageDelivered
	}
	if shipment.HasShipment {
		return StageShipped
	}
	if !QuoteConfirmed(quote) {
		return StageQuoteSent
	}
	if anyNonPaymentIncomplete(tasks) {
		return StageDesignInfoNeeded
	}
	return StageProduction
}

func computeNextStep(quote *Quote, shipment Shipment, tasks []Task) (string, TaskOwner) {
	for _, t := range tasks {
		if t.Incomplete() {
			return t.Title, t.Owner
		}
	}
	if quote != nil && !QuotePaid(quote) {
		return "Review and pay your quote", OwnerCustomer
	}
	if shipment.HasShipment {
		return "Track your shipment", OwnerCustomer
	}
	if quote != nil {
		return "We're working on production — we'll notify you when it ships", OwnerProvider
	}
	return "We're preparing your quote — we'll notify you when it's ready", OwnerProvider
}

func anyNonPaymentIncomplete(tasks []Task) bool {
	for _, t := range tasks {
		if t.Kind != TaskQuote && t.Incomplete() {
			return true
		}
	}
	return false
}

func tasksProgress(tasks []Task) TasksProgress {
	p := TasksProgress{Total: len(tasks)}
	for _, t := range tasks {
		if !t.Incomplete() {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = p.Completed * 100 / p.Total
	}
	return p
}

func stepperSteps(computedStage string, quote *Quote, tasks []Task) []StepperStep {
	shipped := computedStage == StageShipped || computedStage == StageDelivered
	delivered := computedStage == StageDelivered
	designDone := !anyNonPaymentIncomplete(tasks)

	design := StepPending
	if quote != nil {
		if designDone {
			design = StepCompleted
		} else {
			design = StepActive
		}
	}

	quotePay := StepPending
	if quote != nil {
		if QuoteConfirmed(quote) {
			quotePay = StepCompleted
		} else {
			quotePay = StepActive
		}
	}

	production := StepPending
	if shipped {
		production = StepCompleted
	} else if computedStage == StageProduction {
		production = StepActive
	}

	shipping := StepPending
	if delivered {
		shipping = StepCompleted
	} else if shipped {
		shipping = StepActive
	}

	return []StepperStep{
		{Key: "design", State: design},
		{Key: "quote_pay", State: quotePay},
		{Key: "production", State: production},
		{Key: "shipping", State: shipping},
	}
}
