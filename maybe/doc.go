/*
Package maybe implements an optional value type.

Areas use Maybe for properties which may be legitimately absent, such as
the bidirectional embedding level of an area: "no level" is different
from level 0.

A Maybe is matched with a switch statement:

	var level int
	switch m := a.BidiLevel().Match(); m {
	case m.Just(&level):
		...
	case m.Nothing():
		...
	}

Matching requires T to be comparable.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package maybe
