/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage holds the key-value stores the whiteboard persists its
// drawing in. A store maps string keys to string values; the board uses a
// single key. Backends: in-memory, a JSON file written transactionally with
// timestamped backups, and an embedded SQLite database. The Fyne preferences
// backend lives with the UI.
package storage
