package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTasks_FormAndPaidQuote(t *testing.T) {
	forms := []FormAssignment{
		{ID: "f1", Name: "W9", IsCompleted: false, DeliveryTiming: "before_delivery"},
	}
	quote := &Quote{ID: "q1", PaymentStatus: "paid"}

	tasks := BuildTasks("folder-1", quote, forms, nil, 0, 0)

	require.Len(t, tasks, 2)
	assert.Equal(t, TaskForm, tasks[0].Kind)
	assert.Equal(t, 5, tasks[0].Priority)
	assert.Equal(t, StatusIncomplete, tasks[0].Status)
	assert.Equal(t, "Complete form: W9", tasks[0].Title)

	assert.Equal(t, TaskQuote, tasks[1].Kind)
	assert.Equal(t, 30, tasks[1].Priority)
	assert.Equal(t, StatusComplete, tasks[1].Status)
	assert.Equal(t, "Quote paid", tasks[1].Title)
}

func TestBuildTasks_IncompleteSortBeforeComplete(t *testing.T) {
	// file_review (50) incomplete must sort before quote (30) complete.
	quote := &Quote{ID: "q1", PaymentStatus: "succeeded"}

	tasks := BuildTasks("folder-1", quote, nil, nil, 3, 1)

	require.Len(t, tasks, 2)
	assert.Equal(t, TaskFileReview, tasks[0].Kind)
	assert.Equal(t, StatusIncomplete, tasks[0].Status)
	assert.Equal(t, TaskQuote, tasks[1].Kind)
	assert.Equal(t, StatusComplete, tasks[1].Status)
}

func TestBuildTasks_PriorityAscendingWithinGroups(t *testing.T) {
	forms := []FormAssignment{
		{ID: "f1", Name: "Care instructions", IsCompleted: false, DeliveryTiming: "after_delivery"},
		{ID: "f2", Name: "Design brief", IsCompleted: false, DeliveryTiming: "before_delivery"},
		{ID: "f3", Name: "Feedback", IsCompleted: true, DeliveryTiming: "after_delivery"},
	}
	sigs := []Esignature{
		{ID: "e1", Name: "Proof approval", IsCompleted: false},
		{ID: "e2", Name: "Terms", IsCompleted: true},
	}
	quote := &Quote{ID: "q1", PaymentStatus: "pending"}

	tasks := BuildTasks("folder-1", quote, forms, sigs, 2, 2)

	require.Len(t, tasks, 7)

	var sawComplete bool
	lastPriority := 0
	for _, task := range tasks {
		if task.Status == StatusComplete {
			if !sawComplete {
				sawComplete = true
				lastPriority = 0
			}
		} else {
			assert.False(t, sawComplete, "incomplete task %q after a completed one", task.Title)
		}
		assert.GreaterOrEqual(t, task.Priority, lastPriority, "priority not ascending at %q", task.Title)
		lastPriority = task.Priority
	}

	// Incomplete group: before-delivery form (5), esignature (20), quote (30),
	// after-delivery form (40).
	assert.Equal(t, "Complete form: Design brief", tasks[0].Title)
	assert.Equal(t, "Sign: Proof approval", tasks[1].Title)
	assert.Equal(t, "Review and pay your quote", tasks[2].Title)
	assert.Equal(t, "Complete form: Care instructions", tasks[3].Title)
}

func TestBuildTasks_DeliveryTimingSplitsFormPriority(t *testing.T) {
	forms := []FormAssignment{
		{ID: "f1", Name: "Before", DeliveryTiming: "before_delivery"},
		{ID: "f2", Name: "After", DeliveryTiming: "after_delivery"},
	}

	tasks := BuildTasks("folder-1", nil, forms, nil, 0, 0)

	require.Len(t, tasks, 2)
	assert.Equal(t, 5, tasks[0].Priority)
	assert.Equal(t, "Complete form: Before", tasks[0].Title)
	assert.Equal(t, 40, tasks[1].Priority)
	assert.Equal(t, "Complete form: After", tasks[1].Title)
}

func TestBuildTasks_FileReviewCompletion(t *testing.T) {
	tasks := BuildTasks("folder-1", nil, nil, nil, 2, 2)
	require.Len(t, tasks, 1)
	assert.Equal(t, TaskFileReview, tasks[0].Kind)
	assert.Equal(t, StatusComplete, tasks[0].Status)

	tasks = BuildTasks("folder-1", nil, nil, nil, 2, 1)
	require.Len(t, tasks, 1)
	assert.Equal(t, StatusIncomplete, tasks[0].Status)

	tasks = BuildTasks("folder-1", nil, nil, nil, 0, 0)
	assert.Empty(t, tasks)
}

func TestBuildTasks_StableOrderForEqualPriorities(t *testing.T) {
	forms := []FormAssignment{
		{ID: "f1", Name: "First", DeliveryTiming: "before_delivery"},
		{ID: "f2", Name: "Second", DeliveryTiming: "before_delivery"},
	}

	tasks := BuildTasks("folder-1", nil, forms, nil, 0, 0)

	require.Len(t, tasks, 2)
	assert.Equal(t, "form:f1", tasks[0].ID)
	assert.Equal(t, "form:f2", tasks[1].ID)
}

func TestQuotePaid(t *testing.T) {
	assert.False(t, QuotePaid(nil))
	assert.True(t, QuotePaid(&Quote{PaymentStatus: "paid"}))
	assert.True(t, QuotePaid(&Quote{PaymentStatus: "Succeeded"}))
	assert.False(t, QuotePaid(&Quote{PaymentStatus: "pending"}))
	assert.False(t, QuotePaid(&Quote{}))
}

func TestQuoteConfirmed(t *testing.T) {
	assert.False(t, QuoteConfirmed(nil))
	assert.True(t, QuoteConfirmed(&Quote{PaymentStatus: "paid"}))
	assert.True(t, QuoteConfirmed(&Quote{Status: "accepted"}))
	assert.True(t, QuoteConfirmed(&Quote{Status: " Approved "}))
	assert.False(t, QuoteConfirmed(&Quote{Status: "draft", PaymentStatus: "pending"}))
}
