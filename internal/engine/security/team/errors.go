// Copyright 2025 Foundry Team
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

package team

// TeamNotFoundError reports a lookup for a team name that has no team.
// Always recoverable by the caller.
type TeamNotFoundError struct {
	Name    string
	message string
}

func newTeamNotFoundError(teamName string) *TeamNotFoundError {
	return &TeamNotFoundError{Name: teamName, message: "Team " + teamName + " does not exist."}
}

func newTeamNotFoundErrorMsg(message string) *TeamNotFoundError {
	return &TeamNotFoundError{message: message}
}

func (e *TeamNotFoundError) Error() string {
	return e.message
}

// TeamAlreadyExistsError reports a create-team collision on name.
type TeamAlreadyExistsError struct {
	Name string
}

func (e *TeamAlreadyExistsError) Error() string {
	return "Team " + e.Name + " already exists."
}
