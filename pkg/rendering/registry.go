package rendering

import (
	"reflect"
	"sync"

	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/sizing"
)

// holders maps each acquired container to the id of the instance holding
// it. Containers whose dynamic type is not comparable cannot be tracked and
// are never reported busy.
var holders = struct {
	sync.Mutex
	m map[sizing.Container]string
}{m: make(map[sizing.Container]string)}

func acquire(c sizing.Container, id string) error {
	if c == nil || !reflect.TypeOf(c).Comparable() {
		return nil
	}
	holders.Lock()
	defer holders.Unlock()
	if owner, ok := holders.m[c]; ok {
		return errors.New(errors.ErrCodeContainerBusy, "container already attached to rendering %s", owner)
	}
	holders.m[c] = id
	return nil
}

func release(c sizing.Container, id string) {
	if c == nil || !reflect.TypeOf(c).Comparable() {
		return
	}
	holders.Lock()
	defer holders.Unlock()
	if holders.m[c] == id {
		delete(holders.m, c)
	}
}
