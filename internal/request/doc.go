// Package request reads search requests and administrative records from TOML.
//
// A search request file looks like:
//
//	tour_name  = "Spring Cup, tour 3"
//	stadium_id = 2
//	teams      = [1, 2, 3, 4]
//
//	[[fields]]
//	format = 5
//	from   = "09:00"
//	to     = "21:00"
//	dur    = 50
//
//	[[wishes]]
//	team_id = 3
//	from    = "10:00"
//	to      = "12:00"
//
//	[[games]]
//	team_id_1 = 1
//	team_id_2 = 2
//	excluded  = true   # kept in the file, left out of the search
//
// Source holds the last good request and reloads it when the file changes.
// Entity documents carry a tag key naming the record kind, e.g.
//
//	tag  = "coach"
//	id   = 12         # omit to create
//	name = "Petrov"
package request
