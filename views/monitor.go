package views

import "github.com/poiesic/beanvault/core"

// QueryMonitor provides hooks to observe a vector search.
// Implement this interface to track intermediate steps and results.
type QueryMonitor interface {
	Start(query string)
	AfterEmbedding(vector []float32)
	Finish(results []*core.Bean)
}

// noopMonitor is a no-op implementation of QueryMonitor
type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)               {}
func (n *noopMonitor) AfterEmbedding(_ []float32)   {}
func (n *noopMonitor) Finish(_ []*core.Bean)        {}
