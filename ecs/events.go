package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

// EventTrigger is the Event.Type carried by TriggerEvent payloads.
const EventTrigger = "trigger"

// TriggerPhase is where a trigger pair sits in its enter/stay/exit cycle.
type TriggerPhase uint8

const (
	TriggerEnter TriggerPhase = iota + 1
	TriggerStay
	TriggerExit
)

func (p TriggerPhase) String() string {
	switch p {
	case TriggerEnter:
		return "enter"
	case TriggerStay:
		return "stay"
	case TriggerExit:
		return "exit"
	default:
		return "unknown"
	}
}

// TriggerEvent is emitted once per notified entity of a trigger pair.
type TriggerEvent struct {
	Entity Entity
	Other  Entity
	Phase  TriggerPhase
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Len reports how many events are waiting.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
