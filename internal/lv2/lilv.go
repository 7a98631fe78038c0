//go:build lilv

package lv2

/*
#cgo pkg-config: lilv-0
#include <stdlib.h>
#include <lilv/lilv.h>
*/
import "C"

import (
	"unsafe"

	"lv2fix/internal/core/errors"
)

const lilvAvailable = true

// lilvBackend owns a LilvWorld. Plugin, port and node pointers obtained from
// it belong to the world and are never freed individually, except nodes this
// package creates with lilv_new_*.
type lilvBackend struct {
	world   *C.LilvWorld
	plugins unsafe.Pointer // const LilvPlugins*, owned by world
}

func openLilv() (Backend, error) {
	world := C.lilv_world_new()
	if world == nil {
		return nil, errors.New(errors.CodeInternal, "lilv_world_new failed")
	}
	C.lilv_world_load_all(world)
	plugins := unsafe.Pointer(C.lilv_world_get_all_plugins(world))
	if plugins == nil {
		C.lilv_world_free(world)
		return nil, errors.New(errors.CodeInternal, "lilv_world_get_all_plugins failed")
	}
	return &lilvBackend{world: world, plugins: plugins}, nil
}

func (b *lilvBackend) Lookup(uri string) (PluginInfo, bool) {
	curi := C.CString(uri)
	defer C.free(unsafe.Pointer(curi))

	node := C.lilv_new_uri(b.world, curi)
	if node == nil {
		return nil, false
	}
	defer C.lilv_node_free(node)

	plugin := C.lilv_plugins_get_by_uri(b.plugins, node)
	if plugin == nil {
		return nil, false
	}
	return &lilvPlugin{world: b.world, plugin: plugin}, true
}

func (b *lilvBackend) EachPlugin(fn func(uri string, numPorts uint32, ports []Port) error) error {
	for it := C.lilv_plugins_begin(b.plugins); !bool(C.lilv_plugins_is_end(b.plugins, it)); it = C.lilv_plugins_next(b.plugins, it) {
		plugin := C.lilv_plugins_get(b.plugins, it)
		if plugin == nil {
			continue
		}
		uri := C.GoString(C.lilv_node_as_uri(C.lilv_plugin_get_uri(plugin)))
		n := C.lilv_plugin_get_num_ports(plugin)
		ports := make([]Port, 0, int(n))
		for i := C.uint32_t(0); i < n; i++ {
			port := C.lilv_plugin_get_port_by_index(plugin, i)
			if port == nil {
				continue
			}
			symbol := C.lilv_port_get_symbol(plugin, port)
			if symbol == nil {
				continue
			}
			ports = append(ports, Port{Index: uint32(i), Symbol: C.GoString(C.lilv_node_as_string(symbol))})
		}
		if err := fn(uri, uint32(n), ports); err != nil {
			return err
		}
	}
	return nil
}

func (b *lilvBackend) Close() error {
	if b.world != nil {
		C.lilv_world_free(b.world)
		b.world = nil
		b.plugins = nil
	}
	return nil
}

type lilvPlugin struct {
	world  *C.LilvWorld
	plugin *C.LilvPlugin
}

func (p *lilvPlugin) NumPorts() uint32 {
	return uint32(C.lilv_plugin_get_num_ports(p.plugin))
}

func (p *lilvPlugin) PortIndex(symbol string) (uint32, bool) {
	csym := C.CString(symbol)
	defer C.free(unsafe.Pointer(csym))

	node := C.lilv_new_string(p.world, csym)
	if node == nil {
		return 0, false
	}
	defer C.lilv_node_free(node)

	port := C.lilv_plugin_get_port_by_symbol(p.plugin, node)
	if port == nil {
		return 0, false
	}
	return uint32(C.lilv_port_get_index(p.plugin, port)), true
}
