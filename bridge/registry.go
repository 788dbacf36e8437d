// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bridge

import (
	"github.com/devblok/korugui/gfx"
)

// entry is a registry slot. Managed entries belong to the bridge and
// follow texture deltas, external entries hold a reference on an image
// owned by the application.
type entry interface {
	image() gfx.Image
	isEntry()
}

type managedEntry struct {
	img gfx.Image
}

func (e managedEntry) image() gfx.Image { return e.img }
func (managedEntry) isEntry()           {}

type externalEntry struct {
	shared *gfx.SharedImage
}

func (e externalEntry) image() gfx.Image { return e.shared }
func (externalEntry) isEntry()           {}

// pendingRelease is a resource waiting for the frames that may
// reference it to retire.
type pendingRelease struct {
	frame    uint64
	resource gfx.Releasable
}

// releaseQueue is ordered by frame since frames only grow.
type releaseQueue []pendingRelease

func (q *releaseQueue) push(frame uint64, res gfx.Releasable) {
	*q = append(*q, pendingRelease{frame: frame, resource: res})
}

// collect releases everything queued at least lag frames before now
// and returns how many resources were released.
func (q *releaseQueue) collect(now, lag uint64) int {
	var n int
	for n < len(*q) && (*q)[n].frame+lag <= now {
		(*q)[n].resource.Release()
		n++
	}
	if n > 0 {
		rest := copy(*q, (*q)[n:])
		for idx := rest; idx < len(*q); idx++ {
			(*q)[idx] = pendingRelease{}
		}
		*q = (*q)[:rest]
	}
	return n
}

// flush releases everything regardless of age.
func (q *releaseQueue) flush() int {
	n := len(*q)
	for idx := range *q {
		(*q)[idx].resource.Release()
	}
	*q = nil
	return n
}
