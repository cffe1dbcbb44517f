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


package api

import "errors"

var (
	// ErrServiceRequired is returned when creating a server without an answer service.
	ErrServiceRequired = errors.New("answer service is required")

	// ErrAPIKeyRequired is returned when creating a server without an API key.
	// An empty key would make the bearer check accept empty tokens.
	ErrAPIKeyRequired = errors.New("api key is required")
)
