// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package maintain

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Task is a named maintenance job. Tasks submitted together must write
// disjoint state so they are safe to run concurrently; jobs that require
// single-flighting (such as clustering) enforce that themselves.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Refresher runs independent maintenance passes concurrently on a bounded
// worker pool.
type Refresher struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// NewRefresher creates a refresher with the given number of workers.
func NewRefresher(workers int, logger *slog.Logger) (*Refresher, error) {
	if workers < 1 {
		return nil, ErrInvalidWorkerCount
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}

	return &Refresher{
		pool:   pool,
		logger: logger.With("component", "refresher"),
	}, nil
}

// RunAll submits every task to the pool and waits for completion.
// Task failures are collected and joined; one failing task does not stop
// the others.
func (r *Refresher) RunAll(ctx context.Context, tasks ...Task) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, task := range tasks {
		task := task
		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			r.logger.Debug("maintenance task starting", "task", task.Name)
			if err := task.Run(ctx); err != nil {
				r.logger.Error("maintenance task failed", "task", task.Name, "err", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			r.logger.Debug("maintenance task finished", "task", task.Name)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, submitErr)
			mu.Unlock()
		}
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Release releases the worker pool.
// The refresher should not be used after calling Release.
func (r *Refresher) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}
