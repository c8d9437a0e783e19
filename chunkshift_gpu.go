// chunkshift_gpu.go - device interface for the chunked-shift stage:
// CPU backend, simulated GPU backend, Auto probe.
package atomcrypte

import "runtime"

// shiftBackend performs the chunked shift/unshift pass. Two
// implementations exist (cpuShiftBackend, simulatedGPUBackend); both
// must produce identical output for identical input so device choice
// never changes ciphertext.
type shiftBackend interface {
	shift(pool *workerPool, data, nonce, passwordKey []byte) ([]byte, error)
	unshift(pool *workerPool, data, nonce, passwordKey []byte) ([]byte, error)
}

type cpuShiftBackend struct{}

func (cpuShiftBackend) shift(pool *workerPool, data, nonce, passwordKey []byte) ([]byte, error) {
	return chunkedShiftCPU(pool, data, nonce, passwordKey)
}

func (cpuShiftBackend) unshift(pool *workerPool, data, nonce, passwordKey []byte) ([]byte, error) {
	return chunkedUnshiftCPU(pool, data, nonce, passwordKey)
}

// simulatedGPUBackend stands in for an OpenCL/CUDA device path. It
// runs the identical chunk algorithm on the host; what it models is
// the dispatch boundary (a device selection that must not change
// ciphertext), not actual offload.
type simulatedGPUBackend struct{}

func (simulatedGPUBackend) shift(pool *workerPool, data, nonce, passwordKey []byte) ([]byte, error) {
	return chunkedShiftCPU(pool, data, nonce, passwordKey)
}

func (simulatedGPUBackend) unshift(pool *workerPool, data, nonce, passwordKey []byte) ([]byte, error) {
	return chunkedUnshiftCPU(pool, data, nonce, passwordKey)
}

// resolveBackend picks the backend for the configured device. Auto
// probes for a usable GPU path; since none exists in this build it
// always falls back to the CPU backend, but the probe point is kept so
// a real device backend can be slotted in later without touching call
// sites.
func resolveBackend(device Device) shiftBackend {
	switch device {
	case Gpu:
		return simulatedGPUBackend{}
	case Auto:
		if probeGPU() {
			return simulatedGPUBackend{}
		}
		return cpuShiftBackend{}
	default:
		return cpuShiftBackend{}
	}
}

// probeGPU reports whether a GPU device path is available. No such
// device exists in this build; runtime.NumCPU is read only to keep the
// probe a real (if trivial) runtime check rather than a bare constant.
func probeGPU() bool {
	return runtime.NumCPU() < 0
}
