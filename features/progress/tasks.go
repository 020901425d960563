package progress

import "sort"

type TaskKind string

const (
	TaskForm       TaskKind = "form"
	TaskEsignature TaskKind = "esignature"
	TaskQuote      TaskKind = "quote"
	TaskFileReview TaskKind = "file_review"
)

type TaskStatus string

const (
	StatusIncomplete TaskStatus = "incomplete"
	StatusComplete   TaskStatus = "complete"
)

type TaskOwner string

const (
	OwnerCustomer TaskOwner = "customer"
	OwnerProvider TaskOwner = "provider"
)

// Fixed per-kind priorities, used only as a tie-break after the
// incomplete/complete partition.
const (
	priorityFormBeforeDelivery = 5
	priorityEsignature         = 20
	priorityQuote              = 30
	priorityFormAfterDelivery  = 40
	priorityFileReview         = 50
)

const deliveryTimingAfter = "after_delivery"

// Task is one customer-facing action item. Tasks are recomputed on every
// request from the source records and never persisted.
type Task struct {
	ID       string     `json:"id"`
	Kind     TaskKind   `json:"kind"`
	Priority int        `json:"priority"`
	Title    string     `json:"title"`
	Status   TaskStatus `json:"status"`
	Owner    TaskOwner  `json:"owner"`
	Deeplink string     `json:"deeplink"`
}

func (t Task) Incomplete() bool { return t.Status == StatusIncomplete }

func statusFor(done bool) TaskStatus {
	if done {
		return StatusComplete
	}
	return StatusIncomplete
}

// BuildTasks derives the folder's task list. The construction order and the
// priority per kind are fixed; the final ordering puts incomplete tasks first,
// each group sorted by priority ascending. This list is the single source of
// truth for "next to do", shared by the progress endpoints and the chat
// assistant.
func BuildTasks(folderID string, quote *Quote, forms []FormAssignment, esignatures []Esignature, filesTotal, filesViewed int) []Task {
	tasks := make([]Task, 0, len(forms)+len(esignatures)+2)

	for _, f := range forms {
		if normalizeStatus(f.DeliveryTiming) == deliveryTimingAfter {
			continue
		}
		tasks = append(tasks, Task{
			ID:       "form:" + f.ID,
			Kind:     TaskForm,
			Priority: priorityFormBeforeDelivery,
			Title:    "Complete form: " + f.Name,
			Status:   statusFor(f.IsCompleted),
			Owner:    OwnerCustomer,
			Deeplink: "/folders/" + folderID + "/forms/" + f.ID,
		})
	}

	for _, e := range esignatures {
		tasks = append(tasks, Task{
			ID:       "esign:" + e.ID,
			Kind:     TaskEsignature,
			Priority: priorityEsignature,
			Title:    "Sign: " + e.Name,
			Status:   statusFor(e.IsCompleted),
			Owner:    OwnerCustomer,
			Deeplink: "/folders/" + folderID + "/esignatures/" + e.ID,
		})
	}

	if quote != nil {
		title := "Review and pay your quote"
		if QuotePaid(quote) {
			title = "Quote paid"
		}
		tasks = append(tasks, Task{
			ID:       "quote:" + quote.ID,
			Kind:     TaskQuote,
			Priority: priorityQuote,
			Title:    title,
			Status:   statusFor(QuotePaid(quote)),
			Owner:    OwnerCustomer,
			Deeplink: "/folders/" + folderID + "/quote",
		})
	}

	for _, f := range forms {
		if normalizeStatus(f.DeliveryTiming) != deliveryTimingAfter {
			continue
		}
		tasks = append(tasks, Task{
			ID:       "form:" + f.ID,
			Kind:     TaskForm,
			Priority: priorityFormAfterDelivery,
			Title:    "Complete form: " + f.Name,
			Status:   statusFor(f.IsCompleted),
			Owner:    OwnerCustomer,
			Deeplink: "/folders/" + folderID + "/forms/" + f.ID,
		})
	}

	if filesTotal > 0 {
		tasks = append(tasks, Task{
			ID:       "files:" + folderID,
			Kind:     TaskFileReview,
			Priority: priorityFileReview,
			Title:    "Review your files",
			Status:   statusFor(filesViewed >= filesTotal),
			Owner:    OwnerCustomer,
			Deeplink: "/folders/" + folderID + "/files",
		})
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Incomplete() != tasks[j].Incomplete() {
			return tasks[i].Incomplete()
		}
		return tasks[i].Priority < tasks[j].Priority
	})

	return tasks
}
