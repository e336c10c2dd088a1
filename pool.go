// Copyright 2026 The ccbuild Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ccbuild

import (
	"sync"

	"github.com/golang/glog"
)

// defaultQueueCapacity is the bounded task queue size (C default 128).
const defaultQueueCapacity = 128

// poolTask is a unit of work. A nil poolTask is the worker-exit sentinel,
// mirroring the original cc_task with a null function pointer.
type poolTask func()

// Pool is a fixed-size worker set draining a bounded FIFO task queue. A
// Go channel supplies the blocking producer/consumer semantics the
// original implements by hand with a semaphore pair and a mutex-protected
// ring buffer -- no extra synchronization is needed for the queue itself,
// only for the fence barrier below.
type Pool struct {
	tasks   chan poolTask
	workers int
	done    sync.WaitGroup

	fenceMu   sync.Mutex
	fenceCond *sync.Cond
	idle      int
	gen       int
}

// NewPool starts numWorkers goroutines draining a queue of the given
// capacity. numWorkers must be >= 1.
func NewPool(numWorkers, queueCapacity int) *Pool {
	if queueCapacity <= 0 {
		queueCapacity = defaultQueueCapacity
	}
	p := &Pool{
		tasks:   make(chan poolTask, queueCapacity),
		workers: numWorkers,
	}
	p.fenceCond = sync.NewCond(&p.fenceMu)
	p.done.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(i)
	}
	return p
}

func (p *Pool) runWorker(id int) {
	defer p.done.Done()
	for t := range p.tasks {
		if t == nil {
			glog.V(2).Infof("pool worker %d: exit sentinel", id)
			return
		}
		t()
	}
}

// Submit enqueues a task. It blocks while the queue is full.
func (p *Pool) Submit(t poolTask) {
	p.tasks <- t
}

// Fence drains every task enqueued before this call, across all workers,
// before returning, mirroring the original's fenced_wait. It enqueues one
// barrier task per worker; each arriving worker increments a shared idle
// counter under fenceMu and either becomes the one to advance the
// generation (if it is the last to arrive) or waits on the condition
// variable for that generation to change. A generation counter -- not a
// boolean flag -- is required so consecutive fences can't lose a wakeup.
func (p *Pool) Fence() {
	p.fenceMu.Lock()
	startGen := p.gen
	p.fenceMu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.Submit(func() {
			p.fenceMu.Lock()
			defer p.fenceMu.Unlock()
			p.idle++
			gen := p.gen
			if p.idle == p.workers {
				p.idle = 0
				p.gen++
				p.fenceCond.Broadcast()
				return
			}
			for p.gen == gen {
				p.fenceCond.Wait()
			}
		})
	}

	p.fenceMu.Lock()
	for p.gen == startGen {
		p.fenceCond.Wait()
	}
	p.fenceMu.Unlock()
}

// Shutdown enqueues one exit sentinel per worker and waits for every
// worker goroutine to return. Cooperative, no cancellation: in-flight
// tasks run to completion.
func (p *Pool) Shutdown() {
	for i := 0; i < p.workers; i++ {
		p.Submit(nil)
	}
	p.done.Wait()
}
