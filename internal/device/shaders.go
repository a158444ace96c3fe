// Package device: embedded WGSL compute shader for seed expansion.
package device

// WorkgroupSize is the number of threads per workgroup used by the
// one-dimensional expansion dispatch.
const WorkgroupSize = 256

// phi is the golden-ratio conjugate used by the unfold transform.
const phi = 0.618033988749895

// unfoldShader expands seed bytes into a full weight buffer:
// weights[i] = tanh((seed_byte(i mod seed_size)/255 + (i mod 4096)/4096) * phi).
//
// The seed is bound as packed u32 words since WGSL has no byte-addressable
// storage type.
const unfoldShader = `
@group(0) @binding(0) var<storage, read> seed: array<u32>;
@group(0) @binding(1) var<storage, read_write> weights: array<f32>;

struct Params {
    param_count: u32,
    seed_size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

const PHI: f32 = 0.618033988749895;

fn seed_byte(j: u32) -> u32 {
    return (seed[j / 4u] >> ((j % 4u) * 8u)) & 0xFFu;
}

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.param_count) {
        let b = seed_byte(idx % params.seed_size);
        let x = f32(b) / 255.0 + f32(idx % 4096u) / 4096.0;
        weights[idx] = tanh(x * PHI);
    }
}
`
