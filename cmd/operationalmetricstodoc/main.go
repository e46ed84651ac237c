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
	"fmt"

	"github.com/netobserv/unitrie/pkg/operational"
	"github.com/netobserv/unitrie/pkg/server"
	"github.com/netobserv/unitrie/pkg/sink"
	"github.com/netobserv/unitrie/pkg/triegen"
)

func documentation() string {
	// Do not remove these unnamed variables ---> they make the linker keep the packages
	// whose operational metrics variables fill up `metricsOpts`
	var _ *triegen.TrieGen
	var _ *server.Server
	var _ sink.Sink

	header := `
> Note: this file was automatically generated, to update execute "make docs"  
	 
# unitrie Operational Metrics  
	 
Each table below provides documentation for an exported unitrie operational metric. 

	`
	doc := operational.GetDocumentation()
	return fmt.Sprintf("%s\n%s\n", header, doc)
}

func main() {
	fmt.Printf("%s", documentation())
}
