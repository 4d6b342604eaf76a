// Package queue implements the bounded priority queue that orders emails for
// processing. Lower rank dequeues first; arrival time breaks ties.
package queue

import (
	"container/heap"
	"sync"
	"time"

	"github.com/helpdeskhq/support-triage/internal/triage"
)

// DefaultCapacity bounds the queue when Options.Capacity is zero.
const DefaultCapacity = 1000

// Task wraps an email while it waits in the queue.
type Task struct {
	Email    triage.Email
	Priority triage.Priority
	Rank     int
	Admitted time.Time

	index int
}

// Stats is a point-in-time snapshot of the queue.
type Stats struct {
	Queued       int
	Processed    int
	Breakdown    map[triage.Priority]int
	NextPriority string
}

// Queue is a bounded min-heap over Tasks, safe for concurrent use.
type Queue struct {
	mu        sync.Mutex
	tasks     taskHeap
	capacity  int
	processed int
	now       func() time.Time
}

func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{capacity: capacity, now: time.Now}
}

// Admit queues an email under the given priority. Under capacity it always
// succeeds. At capacity the email is accepted only when it outranks the worst
// queued task, which it then replaces in place. Rejection is backpressure,
// not an error.
func (q *Queue) Admit(email triage.Email, priority triage.Priority) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	task := &Task{
		Email:    email,
		Priority: priority,
		Rank:     priority.Rank(),
		Admitted: q.now(),
	}

	if q.tasks.Len() < q.capacity {
		heap.Push(&q.tasks, task)
		return true
	}

	worst := q.worstLocked()
	if worst == nil || task.Rank >= worst.Rank {
		return false
	}
	i := worst.index
	task.index = i
	q.tasks[i] = task
	heap.Fix(&q.tasks, i)
	return true
}

// Next pops the most urgent task, or false when the queue is empty.
func (q *Queue) Next() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.tasks.Len() == 0 {
		return Task{}, false
	}
	task := heap.Pop(&q.tasks).(*Task)
	q.processed++
	return *task, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tasks.Len()
}

func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	breakdown := map[triage.Priority]int{
		triage.PriorityUrgent: 0,
		triage.PriorityHigh:   0,
		triage.PriorityNormal: 0,
		triage.PriorityLow:    0,
	}
	for _, t := range q.tasks {
		p := t.Priority
		if !p.Valid() {
			p = triage.PriorityNormal
		}
		breakdown[p]++
	}

	next := "None"
	if q.tasks.Len() > 0 {
		next = string(q.tasks[0].Priority)
	}
	return Stats{
		Queued:       q.tasks.Len(),
		Processed:    q.processed,
		Breakdown:    breakdown,
		NextPriority: next,
	}
}

// worstLocked returns the least urgent task, preferring the latest arrival
// among equally ranked ones. Linear scan; eviction is the rare path.
func (q *Queue) worstLocked() *Task {
	var worst *Task
	for _, t := range q.tasks {
		if worst == nil {
			worst = t
			continue
		}
		if t.Rank > worst.Rank || (t.Rank == worst.Rank && t.Admitted.After(worst.Admitted)) {
			worst = t
		}
	}
	return worst
}

type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].Rank != h[j].Rank {
		return h[i].Rank < h[j].Rank
	}
	return h[i].Admitted.Before(h[j].Admitted)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	t.index = -1
	return t
}
