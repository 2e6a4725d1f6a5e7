package filemerge

import "container/heap"

// prioritizedTool is one entry in the priority pool built by the Tool
// Picker's step 4. Adapted from the go-git fork's commit priority queue:
// the same container/heap plumbing, with time.Time priority swapped for
// the integer merge-tools.<tool>.priority and a declaration-order index
// used to keep ties stable.
type prioritizedTool struct {
	name     string
	priority int
	seq      int // declaration order, for deterministic tie-breaks
	index    int // heap bookkeeping
}

// toolPriorityQueue implements heap.Interface, popping the highest
// priority first and, among ties, the earliest declared tool.
type toolPriorityQueue []*prioritizedTool

func (pq toolPriorityQueue) Len() int { return len(pq) }

func (pq toolPriorityQueue) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority > pq[j].priority
	}

	return pq[i].seq < pq[j].seq
}

func (pq toolPriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *toolPriorityQueue) Push(x interface{}) {
	item := x.(*prioritizedTool)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *toolPriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	item.index = -1
	*pq = old[0 : n-1]

	return item
}

// sortedByPriority drains a fresh heap built from names/priorities/seq,
// returning names highest-priority-first with stable order among ties.
func sortedByPriority(entries []prioritizedTool) []string {
	pq := make(toolPriorityQueue, 0, len(entries))
	heap.Init(&pq)

	for i := range entries {
		e := entries[i]
		heap.Push(&pq, &e)
	}

	out := make([]string, 0, len(entries))
	for pq.Len() > 0 {
		out = append(out, heap.Pop(&pq).(*prioritizedTool).name)
	}

	return out
}
