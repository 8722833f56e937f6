package platform

// StylesheetQueue is the host's stylesheet registration system. The pipeline
// hands generated CSS to it and never inspects what happens afterwards.
type StylesheetQueue interface {
	Register(handle, src string, deps []string, version, media string)
	Enqueue(handle string)
	AddInline(handle, cssText string)
}

// QueueCall records one call made against MemoryQueue, in order.
type QueueCall struct {
	Op     string // "register", "enqueue" or "add-inline"
	Handle string
	Src    string
	CSS    string
}

// MemoryQueue is a StylesheetQueue that records calls. It is the default when
// the pipeline runs outside a host platform (CLI, tests).
type MemoryQueue struct {
	Calls []QueueCall
}

// Register implements StylesheetQueue.
func (q *MemoryQueue) Register(handle, src string, deps []string, version, media string) {
	q.Calls = append(q.Calls, QueueCall{Op: "register", Handle: handle, Src: src})
}

// Enqueue implements StylesheetQueue.
func (q *MemoryQueue) Enqueue(handle string) {
	q.Calls = append(q.Calls, QueueCall{Op: "enqueue", Handle: handle})
}

// AddInline implements StylesheetQueue.
func (q *MemoryQueue) AddInline(handle, cssText string) {
	q.Calls = append(q.Calls, QueueCall{Op: "add-inline", Handle: handle, CSS: cssText})
}

// Inline returns concatenated CSS from all add-inline calls for handle.
func (q *MemoryQueue) Inline(handle string) string {
	var out string
	for _, c := range q.Calls {
		if c.Op == "add-inline" && c.Handle == handle {
			out += c.CSS
		}
	}
	return out
}
