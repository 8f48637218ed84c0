// Copyright 2026 The nutsdb Author. All rights reserved.
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

package nutsquery

import "github.com/nutsdb/nutsquery/internal/utils"

type ILogger = utils.ILogger

// SetLogger Set the package logger used by engines opened without WithLogger.
func SetLogger(logger ILogger) {
	utils.SetLogger(logger)
}

// GetLogger Get the package logger.
func GetLogger() ILogger {
	return utils.GetLogger()
}

// DiscardLogger returns a logger that drops every line.
func DiscardLogger() ILogger {
	return utils.DiscardLogger()
}
