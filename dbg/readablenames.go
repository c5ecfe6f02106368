package dbg

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"strings"
	"sync"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/logrusorgru/aurora"
)

// This converts pointers into random readable names, so that log lines about
// chains and faces are easy to tell apart. Names are generated lazily and
// memoized for the life of the process; they are only meaningful within a
// single run.

var (
	mu   sync.Mutex
	memo = make(map[interface{}]string)
)

func init() {
	// Since the names are generated in order of demand, we make them
	// nondeterministic to remind the reader that the same name doesn't refer to
	// the same thing between runs.
	petname.NonDeterministicMode()
}

func Name(obj interface{}) string {
	if obj == nil {
		return "Ø"
	}
	if v := reflect.ValueOf(obj); v.Kind() == reflect.Ptr && v.IsNil() {
		return "Ø"
	}

	mu.Lock()
	defer mu.Unlock()
	if r, ok := memo[obj]; ok {
		return r
	}
	r := fmt.Sprintf("%s%s", title(petname.Adjective()), title(petname.Name()))
	memo[obj] = r
	return r
}

// Name, with a stable color picked from the name itself.
func Colored(obj interface{}) string {
	name := Name(obj)
	h := fnv.New32a()
	h.Write([]byte(name))
	colors := []func(interface{}) aurora.Value{aurora.Cyan, aurora.Green, aurora.Magenta, aurora.Yellow, aurora.Blue}
	return colors[h.Sum32()%uint32(len(colors))](name).String()
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
