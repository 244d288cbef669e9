package gpu

import "context"

// Reader samples the GPUs found by Detect.
type Reader struct {
	info Info
	opts Options
}

// NewReader creates a Reader for a completed detection.
func NewReader(info Info, opts Options) *Reader {
	return &Reader{info: info, opts: opts.withDefaults()}
}

// Info returns the detection this reader was built from.
func (r *Reader) Info() Info { return r.info }

// Read takes one sample. The returned Stats are always usable: on error they
// hold the per-vendor fallback values.
func (r *Reader) Read(ctx context.Context) (Stats, error) {
	switch r.info.Vendor {
	case VendorNVIDIA:
		if r.info.Count <= 0 {
			return Fallback(Info{}), nil
		}
		return readNvidia(ctx, r.opts, r.info)
	case VendorAMD:
		if r.info.Count <= 0 {
			return Fallback(Info{}), nil
		}
		return readAMD(r.opts.SysRoot, r.info.Cards)
	case VendorIntel:
		// Utilization needs intel_gpu_top sampling with elevated privileges.
		return Fallback(r.info), nil
	default:
		return Fallback(r.info), nil
	}
}
