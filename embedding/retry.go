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

package embedding

import (
	"context"
	"time"
)

// retry runs op until it succeeds or the attempt budget is spent, returning
// the last error. Delays grow as backoff, 2*backoff, 4*backoff.
func (g *Generator) retry(ctx context.Context, op func() error) error {
	var lastErr error
	delay := g.backoff
	for attempt := 1; attempt <= g.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			if attempt > 1 {
				g.logger.Debug("embedder call succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if attempt == g.attempts {
			break
		}
		g.logger.Warn("embedder call failed, retrying",
			"attempt", attempt,
			"max_attempts", g.attempts,
			"delay", delay,
			"error", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return lastErr
}
