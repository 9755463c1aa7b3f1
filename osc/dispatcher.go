package osc

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Method is an interface for OSC Methods.
type Method interface {
	HandleMessage(msg *Message)
}

// MethodFunc implements the Method interface. Type definition for an OSC Method function.
type MethodFunc func(msg *Message)

// HandleMessage calls itself with the given OSC Message. Implements the Method interface.
func (f MethodFunc) HandleMessage(msg *Message) {
	f(msg)
}

// Dispatcher hands received messages to the Methods registered for matching
// addresses. A registered address may itself be an OSC pattern, so one Method
// can watch e.g. every fader with "/sd/Input_Channels/*/fader".
type Dispatcher struct {
	mu      sync.RWMutex
	methods map[string]Method
}

// AddMethod adds a new OSC Method for the given OSC Address or pattern.
func (d *Dispatcher) AddMethod(addr string, method Method) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.methods == nil {
		d.methods = make(map[string]Method)
	}

	if !strings.HasPrefix(addr, "/") || strings.ContainsAny(addr, "# ") {
		return fmt.Errorf("AddMethod: invalid OSC address %q", addr)
	}

	if _, err := getRegEx(addr); err != nil {
		return fmt.Errorf("AddMethod: %w", err)
	}

	if _, ok := d.methods[addr]; ok {
		return fmt.Errorf("AddMethod: OSC Method exists already")
	}

	d.methods[addr] = method
	return nil
}

// AddMethodFunc allows you to just pass a MethodFunc.
func (d *Dispatcher) AddMethodFunc(addr string, method MethodFunc) error {
	return d.AddMethod(addr, method)
}

// Dispatch calls every Method whose address matches the message address, in
// lexical order of the registered addresses. Returns the number of Methods
// called.
func (d *Dispatcher) Dispatch(msg *Message) int {
	d.mu.RLock()
	addrs := make([]string, 0, len(d.methods))
	for a := range d.methods {
		if Match(a, msg.Address) {
			addrs = append(addrs, a)
		}
	}
	sort.Strings(addrs)
	matched := make([]Method, len(addrs))
	for i, a := range addrs {
		matched[i] = d.methods[a]
	}
	d.mu.RUnlock()

	for _, m := range matched {
		m.HandleMessage(msg)
	}
	return len(matched)
}
