package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/chemotaxis/systems"
)

// parallelThreshold is the minimum particle count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// phase selects the per-particle operation a chunk runs.
type phase uint8

const (
	phaseSense phase = iota
	phaseDecide
	phaseApply
)

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	Neighbors []systems.Neighbor
	moved     int
}

// workChunk represents a range of particles for a worker to process.
type workChunk struct {
	start, end int
	phase      phase
}

// parallelState holds the worker pool that splits each phase.
type parallelState struct {
	scratches  []workerScratch
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// newParallelState sizes the pool. Zero or one worker runs every phase
// on the calling goroutine; a negative count means GOMAXPROCS.
func newParallelState(numWorkers int) *parallelState {
	if numWorkers < 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	scratches := make([]workerScratch, numWorkers)
	for i := range scratches {
		scratches[i].Neighbors = make([]systems.Neighbor, 0, 64)
	}
	return &parallelState{
		numWorkers: numWorkers,
		scratches:  scratches,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(g *Game, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.runChunk(chunk.phase, chunk.start, chunk.end, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// runPhase runs ph over the whole arena and returns once every particle
// is done. The result is the number of committed moves (apply phase only).
func (g *Game) runPhase(ph phase) int {
	for i := range g.parallel.scratches {
		g.parallel.scratches[i].moved = 0
	}

	n := len(g.entities)
	if g.parallel.numWorkers <= 1 || n < parallelThreshold {
		g.runChunk(ph, 0, n, &g.parallel.scratches[0])
	} else {
		g.computeParallel(ph, n)
	}

	moved := 0
	for i := range g.parallel.scratches {
		moved += g.parallel.scratches[i].moved
	}
	return moved
}

// computeParallel dispatches work to the worker pool and waits for all chunks.
func (g *Game) computeParallel(ph phase, n int) {
	// Ensure workers are running
	if !g.parallel.running {
		g.parallel.startWorkers(g)
	}

	numWorkers := g.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		g.parallel.workChan <- workChunk{start: start, end: end, phase: ph}
		chunksDispatched++
	}

	// Barrier: the next phase reads what this one wrote
	for i := 0; i < chunksDispatched; i++ {
		<-g.parallel.doneChan
	}
}

// runChunk processes a range of particles for a single worker.
// Each call writes only the components of particles in [i0, i1).
func (g *Game) runChunk(ph phase, i0, i1 int, scratch *workerScratch) {
	for i := i0; i < i1; i++ {
		e := g.entities[i]
		switch ph {
		case phaseSense:
			scratch.Neighbors = g.sense.Sense(e, scratch.Neighbors)
		case phaseDecide:
			scratch.Neighbors = g.velocity.Decide(e, g.draws[i], scratch.Neighbors)
		case phaseApply:
			if g.position.Apply(e) {
				scratch.moved++
			}
		}
	}
}

// stopParallelWorkers should be called when shutting down the simulation.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
