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


package badger

// TestRepositories bundles the in-memory repositories used by tests.
type TestRepositories struct {
	Backend    *Backend
	Beans      *BeanRepository
	Chatters   *ChatterRepository
	Publishers *PublisherRepository
	Clusters   *ClusterRepository
	RefVectors *RefVectorRepository
}

// Close releases every repository and the backend.
func (t *TestRepositories) Close() {
	t.Chatters.Close()
	t.Beans.Close()
	t.Publishers.Close()
	t.Clusters.Close()
	t.RefVectors.Close()
	t.Backend.Close()
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close the result when done.
func NewMemoryRepositories() (*TestRepositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	beans, err := NewBeanRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chatters, err := NewChatterRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	publishers, err := NewPublisherRepository(backend)
	if err != nil {
		chatters.Close()
		backend.Close()
		return nil, err
	}

	clusters, err := NewClusterRepository(backend, beans)
	if err != nil {
		chatters.Close()
		backend.Close()
		return nil, err
	}

	return &TestRepositories{
		Backend:    backend,
		Beans:      beans,
		Chatters:   chatters,
		Publishers: publishers,
		Clusters:   clusters,
		RefVectors: NewRefVectorRepository(backend),
	}, nil
}
