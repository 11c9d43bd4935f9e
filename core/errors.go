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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidBean indicates a Bean failed validation.
	ErrInvalidBean = errors.New("invalid bean")

	// ErrInvalidChatter indicates a Chatter failed validation.
	ErrInvalidChatter = errors.New("invalid chatter")

	// ErrInvalidPublisher indicates a Publisher failed validation.
	ErrInvalidPublisher = errors.New("invalid publisher")

	// ErrEmptyURL indicates the URL field is empty.
	ErrEmptyURL = errors.New("url cannot be empty")

	// ErrEmptyChatterURL indicates the ChatterURL field is empty.
	ErrEmptyChatterURL = errors.New("chatter url cannot be empty")

	// ErrEmptySource indicates the publisher Source field is empty.
	ErrEmptySource = errors.New("source cannot be empty")

	// ErrEmptyBaseURL indicates the publisher BaseURL field is empty.
	ErrEmptyBaseURL = errors.New("base url cannot be empty")

	// ErrInvalidKind indicates an unknown content Kind value.
	ErrInvalidKind = errors.New("invalid content kind")

	// ErrDimensionMismatch indicates an embedding whose length differs
	// from the configured vector dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
