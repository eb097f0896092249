/*
Package result implements the outcome of a computation which may fail.

The render controller threads a Result through every step performed on a
page (load from cache, render, clear) and inspects it at a single point,
where it decides whether a failure costs one page or the whole document.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package result
