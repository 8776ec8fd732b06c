package graphics

// Uniform names shared by the renderer and the GLSL sources.
const (
	UProjectionMatrix = "u_ProjectionMatrix"
	UViewMatrix       = "u_ViewMatrix"
	UModelMatrix      = "u_ModelMatrix"
	UNormalMatrix     = "u_NormalMatrix"

	USampler          = "u_Sampler"
	UShadowMapSampler = "u_ShadowMapSampler"

	ULightProjectionMatrix = "u_LightProjectionMatrix"
	ULightViewMatrix       = "u_LightViewMatrix"
	ULightPosition         = "u_LightPosition"
	ULightDirection        = "u_LightDirection"
	ULightAngle            = "u_LightAngle"
	ULightExponent         = "u_LightExponent"
	ULightDiffuseColor     = "u_LightDiffuseColor"
	ULightSpecularColor    = "u_LightSpecularColor"
	ULightIntensity        = "u_LightIntensity"

	UMaterialAmbientColor  = "u_MaterialAmbientColor"
	UMaterialDiffuseColor  = "u_MaterialDiffuseColor"
	UMaterialEmissiveColor = "u_MaterialEmissiveColor"
	UMaterialSpecularColor = "u_MaterialSpecularColor"
	UMaterialShininess     = "u_MaterialShininess"

	UTextColor = "u_TextColor"
)
