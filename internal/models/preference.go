// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ColumnPreference is the set of table columns an operator has hidden on
// one list screen.
type ColumnPreference struct {
	Owner     string    `json:"owner"`
	Entity    string    `json:"entity"`
	Hidden    []string  `json:"hidden_columns"`
	UpdatedAt time.Time `json:"updated_at"`
}
