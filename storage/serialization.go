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


package storage

import (
	"github.com/mus-format/mus-go/raw"
	"github.com/poiesic/beanvault/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalBean serializes a Bean to bytes.
func MarshalBean(bean *core.Bean) []byte {
	buf := make([]byte, core.BeanMUS.Size(*bean))
	core.BeanMUS.Marshal(*bean, buf)
	return buf
}

// UnmarshalBean deserializes a Bean from bytes.
func UnmarshalBean(data []byte) (*core.Bean, error) {
	bean, _, err := core.BeanMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &bean, nil
}

// MarshalPublisher serializes a Publisher to bytes.
func MarshalPublisher(publisher *core.Publisher) []byte {
	buf := make([]byte, core.PublisherMUS.Size(*publisher))
	core.PublisherMUS.Marshal(*publisher, buf)
	return buf
}

// UnmarshalPublisher deserializes a Publisher from bytes.
func UnmarshalPublisher(data []byte) (*core.Publisher, error) {
	publisher, _, err := core.PublisherMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &publisher, nil
}

// MarshalChatter serializes a Chatter to bytes.
func MarshalChatter(chatter *core.Chatter) []byte {
	buf := make([]byte, core.ChatterMUS.Size(*chatter))
	core.ChatterMUS.Marshal(*chatter, buf)
	return buf
}

// UnmarshalChatter deserializes a Chatter from bytes.
func UnmarshalChatter(data []byte) (*core.Chatter, error) {
	chatter, _, err := core.ChatterMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chatter, nil
}

// MarshalAggregate serializes a ChatterAggregate to bytes.
func MarshalAggregate(agg *core.ChatterAggregate) []byte {
	buf := make([]byte, core.ChatterAggregateMUS.Size(*agg))
	core.ChatterAggregateMUS.Marshal(*agg, buf)
	return buf
}

// UnmarshalAggregate deserializes a ChatterAggregate from bytes.
func UnmarshalAggregate(data []byte) (*core.ChatterAggregate, error) {
	agg, _, err := core.ChatterAggregateMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// MarshalRefVector serializes a RefVector to bytes.
func MarshalRefVector(rv *core.RefVector) []byte {
	buf := make([]byte, core.RefVectorMUS.Size(*rv))
	core.RefVectorMUS.Marshal(*rv, buf)
	return buf
}

// UnmarshalRefVector deserializes a RefVector from bytes.
func UnmarshalRefVector(data []byte) (*core.RefVector, error) {
	rv, _, err := core.RefVectorMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// MarshalDistance serializes a cluster-edge distance to bytes.
func MarshalDistance(d float64) []byte {
	buf := make([]byte, raw.Float64.Size(d))
	raw.Float64.Marshal(d, buf)
	return buf
}

// UnmarshalDistance deserializes a cluster-edge distance from bytes.
func UnmarshalDistance(data []byte) (float64, error) {
	d, _, err := raw.Float64.Unmarshal(data)
	return d, err
}
