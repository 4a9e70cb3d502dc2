package renderer

const vertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;
layout (location = 3) in vec4 aColor;

uniform mat4 uViewProj;

out vec3 vPosition;
out vec3 vNormal;
out vec4 vColor;

void main() {
    vPosition = aPosition;
    vNormal = aNormal;
    vColor = aColor;
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

// Vertices without normals come through as zero vectors and are drawn unlit.
const fragmentShader = `
#version 410 core

in vec3 vPosition;
in vec3 vNormal;
in vec4 vColor;

uniform vec3 uEye;
uniform bool uUnlit;

out vec4 FragColor;

void main() {
    if (uUnlit || dot(vNormal, vNormal) < 1e-8) {
        FragColor = vColor;
        return;
    }
    vec3 n = normalize(vNormal);
    vec3 l = normalize(uEye - vPosition);
    float diffuse = abs(dot(n, l));
    FragColor = vec4(vColor.rgb * (0.25 + 0.75 * diffuse), vColor.a);
}
`

const lineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;

uniform mat4 uViewProj;

void main() {
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

const lineFragmentShader = `
#version 410 core

uniform vec3 uColor;

out vec4 FragColor;

void main() {
    FragColor = vec4(uColor, 1.0);
}
`
