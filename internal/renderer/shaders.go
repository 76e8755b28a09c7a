package renderer

// RaymarchingShader sphere-traces a union of sphere SDFs into a write-only
// rgba16float storage texture. The workgroup size must equal
// WorkgroupSize×WorkgroupSize.
const RaymarchingShader = `
struct Constants {
    texture_size: vec2<u32>,
    time: f32,
    rotation: f32,
    ray_origin: vec3<f32>,
    fov: f32,
    object_count: u32,
}

struct Object {
    position: vec3<f32>,
    radius: f32,
}

@group(0) @binding(0) var output_texture: texture_storage_2d<rgba16float, write>;
@group(1) @binding(0) var<uniform> constants: Constants;
@group(1) @binding(1) var<storage, read> objects: array<Object>;

const MAX_STEPS: i32 = 128;
const MAX_DISTANCE: f32 = 100.0;
const SURFACE_EPSILON: f32 = 0.001;

fn scene_distance(p: vec3<f32>) -> f32 {
    var d = MAX_DISTANCE;
    for (var i = 0u; i < constants.object_count; i = i + 1u) {
        let sphere = objects[i];
        d = min(d, length(p - sphere.position) - sphere.radius);
    }
    return d;
}

fn scene_normal(p: vec3<f32>) -> vec3<f32> {
    let e = vec2<f32>(SURFACE_EPSILON, 0.0);
    return normalize(vec3<f32>(
        scene_distance(p + e.xyy) - scene_distance(p - e.xyy),
        scene_distance(p + e.yxy) - scene_distance(p - e.yxy),
        scene_distance(p + e.yyx) - scene_distance(p - e.yyx),
    ));
}

fn rotate_y(v: vec3<f32>, angle: f32) -> vec3<f32> {
    let s = sin(angle);
    let c = cos(angle);
    return vec3<f32>(c * v.x + s * v.z, v.y, -s * v.x + c * v.z);
}

fn sky(dir: vec3<f32>) -> vec3<f32> {
    let t = 0.5 * (dir.y + 1.0);
    return mix(vec3<f32>(0.05, 0.05, 0.08), vec3<f32>(0.35, 0.45, 0.65), t);
}

@compute @workgroup_size(16, 16, 1)
fn compute_main(@builtin(global_invocation_id) id: vec3<u32>) {
    if (id.x >= constants.texture_size.x || id.y >= constants.texture_size.y) {
        return;
    }

    let size = vec2<f32>(constants.texture_size);
    var uv = (vec2<f32>(id.xy) + vec2<f32>(0.5) - 0.5 * size) / size.y;
    uv.y = -uv.y;

    let focal = 0.5 / tan(radians(constants.fov) * 0.5);
    let dir = rotate_y(normalize(vec3<f32>(uv.x, uv.y, -focal)), constants.rotation);
    let origin = constants.ray_origin;

    var travelled = 0.0;
    var hit = false;
    for (var n = 0; n < MAX_STEPS; n = n + 1) {
        let d = scene_distance(origin + dir * travelled);
        if (d < SURFACE_EPSILON) {
            hit = true;
            break;
        }
        travelled = travelled + d;
        if (travelled > MAX_DISTANCE) {
            break;
        }
    }

    var color = sky(dir);
    if (hit) {
        let p = origin + dir * travelled;
        let n = scene_normal(p);
        let light = normalize(vec3<f32>(cos(constants.time * 0.5), 1.0, sin(constants.time * 0.5)));
        let diffuse = max(dot(n, light), 0.0);
        let rim = pow(1.0 - max(dot(n, -dir), 0.0), 3.0);
        color = vec3<f32>(0.9, 0.55, 0.3) * (0.1 + diffuse) + vec3<f32>(0.2, 0.3, 0.5) * rim;
    }

    textureStore(output_texture, vec2<i32>(id.xy), vec4<f32>(color, 1.0));
}
`

// ShowShader samples a texture across a full-screen quad.
const ShowShader = `
struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@group(0) @binding(0) var source_texture: texture_2d<f32>;
@group(0) @binding(1) var source_sampler: sampler;

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(in.position, 0.0, 1.0);
    out.uv = in.uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(source_texture, source_sampler, in.uv);
}
`
