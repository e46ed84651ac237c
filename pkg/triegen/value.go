/*
 * Copyright (C) 2022 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package triegen

import (
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/pkg/errors"
)

// evaluator turns value fields into trie values. A field is a number or an
// arithmetic expression over the definition constants.
type evaluator struct {
	params map[string]interface{}
}

func newEvaluator(constants map[string]int64) *evaluator {
	params := make(map[string]interface{}, len(constants))
	for k, v := range constants {
		params[k] = float64(v)
	}
	return &evaluator{params: params}
}

func (e *evaluator) value(expr string) (uint32, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return 0, errors.New("empty value")
	}
	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return uint32(v), nil
	}
	expression, err := govaluate.NewEvaluableExpression(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing value %q", s)
	}
	result, err := expression.Evaluate(e.params)
	if err != nil {
		return 0, errors.Wrapf(err, "evaluating value %q", s)
	}
	f, ok := result.(float64)
	if !ok {
		return 0, errors.Errorf("value %q is %T, not a number", s, result)
	}
	if f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
		return 0, errors.Errorf("value %q = %v is not an unsigned 32-bit integer", s, f)
	}
	return uint32(f), nil
}

// valueOr evaluates expr, returning def for an empty field.
func (e *evaluator) valueOr(expr string, def uint32) (uint32, error) {
	if strings.TrimSpace(expr) == "" {
		return def, nil
	}
	return e.value(expr)
}
