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

package main

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/netobserv/unitrie/pkg/api"
)

// writeDoc prints the yaml layout of t with the doc tag of each field.
// Pointers, slices and maps are documented by their element type.
func writeDoc(output io.Writer, t reflect.Type, indent int) {
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice || t.Kind() == reflect.Map {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	pad := strings.Repeat(" ", 4*(indent+1))
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldName, _, _ := strings.Cut(field.Tag.Get(api.TagYaml), ",")
		fieldDocTag := field.Tag.Get(api.TagDoc)

		if fieldEnumTag := field.Tag.Get(api.TagEnum); fieldEnumTag != "" {
			fmt.Fprintf(output, "%s %s: (enum) %s\n", pad, fieldName, fieldDocTag)
			writeDoc(output, api.GetEnumReflectionTypeByFieldName(fieldEnumTag), indent+1)
			continue
		}
		switch {
		case strings.HasPrefix(fieldDocTag, "#"):
			fmt.Fprintf(output, "\n%s\n<pre>\n%s %s:\n", fieldDocTag, strings.Repeat(" ", 4*indent), fieldName)
			writeDoc(output, field.Type, indent+1)
			fmt.Fprintf(output, "</pre>")
		case fieldDocTag != "":
			fmt.Fprintf(output, "%s %s: %s\n", pad, fieldName, fieldDocTag)
			writeDoc(output, field.Type, indent+1)
		}
	}
}

func main() {
	output := new(bytes.Buffer)
	writeDoc(output, reflect.TypeOf(api.API{}), 0)
	fmt.Print(output)
}
