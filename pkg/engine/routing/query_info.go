package routing

import (
	da "github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/datastructure"
)

type VertexInfo struct {
	dist     float64
	parent   da.Index
	heapNode *da.PriorityQueueNode[da.Index]
}

func NewVertexInfo(dist float64, parent da.Index, heapNode *da.PriorityQueueNode[da.Index]) *VertexInfo {
	return &VertexInfo{
		dist:     dist,
		parent:   parent,
		heapNode: heapNode,
	}
}

func (vi *VertexInfo) GetDist() float64 {
	return vi.dist
}

func (vi *VertexInfo) GetParent() da.Index {
	return vi.parent
}

func (vi *VertexInfo) GetHeapNode() *da.PriorityQueueNode[da.Index] {
	return vi.heapNode
}

func (vi *VertexInfo) update(dist float64, parent da.Index) {
	vi.dist = dist
	vi.parent = parent
}
