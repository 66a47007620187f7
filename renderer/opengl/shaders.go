package opengl

// Maximum number of lights forwarded to the transparency shader.
const maxForwardLights = 16

const glslVersion = "#version 430 core\n"

const meshVertexShader = glslVersion + `
layout(location = 0) in vec4 position;
layout(location = 1) in vec4 normal;
layout(location = 2) in vec4 uv;

uniform mat4 model;
uniform mat4 view;
uniform mat4 proj;

out vec3 worldPos;
out vec3 worldNormal;
out vec2 texCoord;

void main() {
	vec4 p = model * vec4(position.xyz, 1.0);
	worldPos = p.xyz;
	worldNormal = normalize(transpose(inverse(mat3(model))) * normal.xyz);
	texCoord = uv.xy;
	gl_Position = proj * view * p;
}
`

const geometryFragmentShader = glslVersion + `
in vec3 worldPos;
in vec3 worldNormal;
in vec2 texCoord;

uniform vec4 diffuse;
uniform vec4 specular;
uniform float roughness;
uniform sampler2D diffuseTex;
uniform sampler2D specularTex;

layout(location = 0) out vec4 gPosition;
layout(location = 1) out vec4 gNormal;
layout(location = 2) out vec4 gDiffuse;
layout(location = 3) out vec4 gSpecular;

void main() {
	gPosition = vec4(worldPos, 1.0);
	gNormal = vec4(normalize(worldNormal), 0.0);
	gDiffuse = vec4(diffuse.rgb * texture(diffuseTex, texCoord).rgb, 1.0);
	gSpecular = vec4(specular.rgb * texture(specularTex, texCoord).rgb, roughness);
}
`

// Shared light evaluation. Light types match scene.LightType.
const lightFunctions = `
const int DIRECTIONAL = 0;
const int POINT = 1;
const int SPOT = 2;
const int AMBIENT = 3;

struct Light {
	int type;
	vec3 radiance;
	vec3 position;
	vec3 direction;
	float radius;
	float spotCos;
};

vec3 shade(Light l, vec3 pos, vec3 n, vec3 diffuse, vec3 specular, float roughness, vec3 eye) {
	if (l.type == AMBIENT) {
		return l.radiance * diffuse;
	}

	vec3 toLight = -normalize(l.direction);
	float atten = 1.0;
	if (l.type != DIRECTIONAL) {
		vec3 d = l.position - pos;
		float dist = length(d);
		if (dist > l.radius) {
			return vec3(0.0);
		}
		toLight = d / dist;
		atten = 1.0 / (1.0 + 2.0 * dist + dist * dist);
		if (l.type == SPOT && dot(-toLight, normalize(l.direction)) < l.spotCos) {
			return vec3(0.0);
		}
	}

	float nDotL = max(dot(n, toLight), 0.0);
	vec3 h = normalize(toLight + normalize(eye - pos));
	float shininess = mix(128.0, 2.0, roughness);
	float spec = pow(max(dot(n, h), 0.0), shininess) * step(0.0001, nDotL);
	return atten * l.radiance * (diffuse * nDotL + specular * spec);
}
`

const lightVertexShader = glslVersion + `
layout(location = 0) in vec4 position;

uniform mat4 mvp;
uniform bool fullscreen;

void main() {
	if (fullscreen) {
		vec2 p = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2);
		gl_Position = vec4(p * 2.0 - 1.0, 0.0, 1.0);
		return;
	}
	gl_Position = mvp * vec4(position.xyz, 1.0);
}
`

const lightFragmentShader = glslVersion + lightFunctions + `
uniform sampler2D gPosition;
uniform sampler2D gNormal;
uniform sampler2D gDiffuse;
uniform sampler2D gSpecular;

uniform vec2 screenSize;
uniform vec3 cameraPos;
uniform Light light;

out vec4 fragColor;

void main() {
	vec2 uv = gl_FragCoord.xy / screenSize;
	vec4 pos = texture(gPosition, uv);
	if (pos.w == 0.0) {
		discard;
	}

	vec4 spec = texture(gSpecular, uv);
	vec3 color = shade(light, pos.xyz, texture(gNormal, uv).xyz, texture(gDiffuse, uv).rgb, spec.rgb, spec.a, cameraPos);
	fragColor = vec4(color, 1.0);
}
`

const transparencyFragmentShader = glslVersion + lightFunctions + `
in vec3 worldPos;
in vec3 worldNormal;
in vec2 texCoord;

uniform vec4 diffuse;
uniform vec4 specular;
uniform float roughness;
uniform float opacity;
uniform sampler2D diffuseTex;
uniform sampler2D specularTex;

uniform vec3 cameraPos;
uniform int numLights;
uniform Light lights[16];

out vec4 fragColor;

void main() {
	vec3 n = normalize(worldNormal);
	vec3 kd = diffuse.rgb * texture(diffuseTex, texCoord).rgb;
	vec3 ks = specular.rgb * texture(specularTex, texCoord).rgb;

	vec3 color = vec3(0.0);
	for (int i = 0; i < numLights; i++) {
		color += shade(lights[i], worldPos, n, kd, ks, roughness, cameraPos);
	}
	fragColor = vec4(color, opacity);
}
`

// The trace shader walks the linear BVH with an explicit stack. Interior
// nodes store the second child in offset; the first child follows them.
const traceComputeShader = glslVersion + `
layout(local_size_x = 16, local_size_y = 16) in;

struct Node {
	vec3 boundsMin;
	uint offset;
	vec3 boundsMax;
	uint packed;
};

struct Vertex {
	vec4 position;
	vec4 normal;
	vec4 uv;
	vec4 tangent;
};

struct Triangle {
	uvec3 indices;
	uint material;
};

struct Material {
	vec4 ambient;
	vec4 diffuse;
	vec4 specular;
	float opacity;
	float roughness;
	int diffuseTex;
	int specularTex;
};

layout(std430, binding = 0) readonly buffer Nodes { Node nodes[]; };
layout(std430, binding = 1) readonly buffer Vertices { Vertex vertices[]; };
layout(std430, binding = 2) readonly buffer Triangles { Triangle triangles[]; };
layout(std430, binding = 3) readonly buffer Materials { Material materials[]; };

layout(rgba8, binding = 0) uniform writeonly image2D outImage;

uniform vec3 cameraPos;
uniform mat4 invView;
uniform mat4 invProj;
uniform vec3 lightDir;
uniform vec3 lightColor;
uniform uint numNodes;

const float INF = 1e30;

bool hitBox(vec3 o, vec3 invDir, vec3 bmin, vec3 bmax, float tMax) {
	vec3 t0 = (bmin - o) * invDir;
	vec3 t1 = (bmax - o) * invDir;
	vec3 tNear = min(t0, t1);
	vec3 tFar = max(t0, t1);
	float tEnter = max(max(tNear.x, tNear.y), max(tNear.z, 0.0));
	float tExit = min(min(tFar.x, tFar.y), min(tFar.z, tMax));
	return tEnter <= tExit;
}

float hitTriangle(vec3 o, vec3 d, uint tri) {
	uvec3 idx = triangles[tri].indices;
	vec3 v0 = vertices[idx.x].position.xyz;
	vec3 e1 = vertices[idx.y].position.xyz - v0;
	vec3 e2 = vertices[idx.z].position.xyz - v0;
	vec3 p = cross(d, e2);
	float det = dot(e1, p);
	if (abs(det) < 1e-8) {
		return INF;
	}
	float invDet = 1.0 / det;
	vec3 s = o - v0;
	float u = dot(s, p) * invDet;
	if (u < 0.0 || u > 1.0) {
		return INF;
	}
	vec3 q = cross(s, e1);
	float v = dot(d, q) * invDet;
	if (v < 0.0 || u + v > 1.0) {
		return INF;
	}
	float t = dot(e2, q) * invDet;
	return t > 1e-4 ? t : INF;
}

float closestHit(vec3 o, vec3 d, out uint hitTri) {
	float tMin = INF;
	vec3 invDir = 1.0 / d;
	bvec3 dirNeg = lessThan(d, vec3(0.0));

	uint stack[64];
	int sp = 0;
	uint node = 0;
	while (true) {
		Node n = nodes[node];
		if (hitBox(o, invDir, n.boundsMin, n.boundsMax, tMin)) {
			uint count = n.packed & 0xffu;
			if (count > 0u) {
				for (uint i = 0u; i < count; i++) {
					float t = hitTriangle(o, d, n.offset + i);
					if (t < tMin) {
						tMin = t;
						hitTri = n.offset + i;
					}
				}
				if (sp == 0) break;
				node = stack[--sp];
			} else {
				uint axis = (n.packed >> 8) & 0xffu;
				// Visit the near child first.
				if (dirNeg[axis]) {
					stack[sp++] = node + 1u;
					node = n.offset;
				} else {
					stack[sp++] = n.offset;
					node = node + 1u;
				}
			}
		} else {
			if (sp == 0) break;
			node = stack[--sp];
		}
	}
	return tMin;
}

void main() {
	ivec2 pixel = ivec2(gl_GlobalInvocationID.xy);
	ivec2 size = imageSize(outImage);
	if (pixel.x >= size.x || pixel.y >= size.y) {
		return;
	}

	vec2 ndc = (vec2(pixel) + 0.5) / vec2(size) * 2.0 - 1.0;
	vec4 target = invProj * vec4(ndc, 1.0, 1.0);
	vec3 dir = normalize((invView * vec4(normalize(target.xyz / target.w), 0.0)).xyz);

	vec3 color = vec3(0.1, 0.1, 0.15);
	if (numNodes > 0u) {
		uint tri;
		float t = closestHit(cameraPos, dir, tri);
		if (t < INF) {
			vec3 pos = cameraPos + t * dir;
			uvec3 idx = triangles[tri].indices;
			vec3 n = normalize(vertices[idx.x].normal.xyz);
			if (dot(n, dir) > 0.0) {
				n = -n;
			}
			Material m = materials[triangles[tri].material];

			vec3 toLight = -normalize(lightDir);
			uint shadowTri;
			float visible = closestHit(pos + n * 1e-3, toLight, shadowTri) < INF ? 0.0 : 1.0;
			color = m.ambient.rgb + visible * lightColor * m.diffuse.rgb * max(dot(n, toLight), 0.0);
		}
	}
	imageStore(outImage, pixel, vec4(color, 1.0));
}
`

const presentVertexShader = glslVersion + `
out vec2 texCoord;

void main() {
	vec2 p = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2);
	texCoord = p;
	gl_Position = vec4(p * 2.0 - 1.0, 0.0, 1.0);
}
`

const presentFragmentShader = glslVersion + `
in vec2 texCoord;

uniform sampler2D image;

out vec4 fragColor;

void main() {
	fragColor = texture(image, texCoord);
}
`
