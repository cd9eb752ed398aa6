package wasmdraco

// Export names generated by the Emscripten WebIDL binder for
// draco_web_decoder.idl, plus the allocator exports.
const (
	exportMalloc = "malloc"
	exportFree   = "free"

	bindDecoderNew                     = "emscripten_bind_Decoder_Decoder_0"
	bindDecoderSkipAttributeTransform  = "emscripten_bind_Decoder_SkipAttributeTransform_1"
	bindDecoderGetEncodedGeometryType  = "emscripten_bind_Decoder_GetEncodedGeometryType_1"
	bindDecoderDecodeToPointCloud      = "emscripten_bind_Decoder_DecodeBufferToPointCloud_2"
	bindDecoderGetAttributeID          = "emscripten_bind_Decoder_GetAttributeId_2"
	bindDecoderGetAttribute            = "emscripten_bind_Decoder_GetAttribute_2"
	bindDecoderGetAttributeFloatForAll = "emscripten_bind_Decoder_GetAttributeFloatForAllPoints_3"
	bindDecoderGetAttributeInt32ForAll = "emscripten_bind_Decoder_GetAttributeInt32ForAllPoints_3"
	bindDecoderDestroy                 = "emscripten_bind_Decoder___destroy___0"

	bindBufferNew     = "emscripten_bind_DecoderBuffer_DecoderBuffer_0"
	bindBufferInit    = "emscripten_bind_DecoderBuffer_Init_2"
	bindBufferDestroy = "emscripten_bind_DecoderBuffer___destroy___0"

	bindPointCloudNew       = "emscripten_bind_PointCloud_PointCloud_0"
	bindPointCloudNumPoints = "emscripten_bind_PointCloud_num_points_0"
	bindPointCloudDestroy   = "emscripten_bind_PointCloud___destroy___0"

	bindStatusOK       = "emscripten_bind_Status_ok_0"
	bindStatusErrorMsg = "emscripten_bind_Status_error_msg_0"

	bindAttributeNumComponents = "emscripten_bind_PointAttribute_num_components_0"
	bindAttributeDataType      = "emscripten_bind_PointAttribute_data_type_0"

	bindQuantNew      = "emscripten_bind_AttributeQuantizationTransform_AttributeQuantizationTransform_0"
	bindQuantInit     = "emscripten_bind_AttributeQuantizationTransform_InitFromAttribute_1"
	bindQuantBits     = "emscripten_bind_AttributeQuantizationTransform_quantization_bits_0"
	bindQuantMinValue = "emscripten_bind_AttributeQuantizationTransform_min_value_1"
	bindQuantRange    = "emscripten_bind_AttributeQuantizationTransform_range_0"
	bindQuantDestroy  = "emscripten_bind_AttributeQuantizationTransform___destroy___0"

	bindOctNew     = "emscripten_bind_AttributeOctahedronTransform_AttributeOctahedronTransform_0"
	bindOctInit    = "emscripten_bind_AttributeOctahedronTransform_InitFromAttribute_1"
	bindOctBits    = "emscripten_bind_AttributeOctahedronTransform_quantization_bits_0"
	bindOctDestroy = "emscripten_bind_AttributeOctahedronTransform___destroy___0"

	bindFloat32ArrayNew      = "emscripten_bind_DracoFloat32Array_DracoFloat32Array_0"
	bindFloat32ArrayGetValue = "emscripten_bind_DracoFloat32Array_GetValue_1"
	bindFloat32ArraySize     = "emscripten_bind_DracoFloat32Array_size_0"
	bindFloat32ArrayDestroy  = "emscripten_bind_DracoFloat32Array___destroy___0"

	bindInt32ArrayNew      = "emscripten_bind_DracoInt32Array_DracoInt32Array_0"
	bindInt32ArrayGetValue = "emscripten_bind_DracoInt32Array_GetValue_1"
	bindInt32ArraySize     = "emscripten_bind_DracoInt32Array_size_0"
	bindInt32ArrayDestroy  = "emscripten_bind_DracoInt32Array___destroy___0"
)

// RequiredExports lists every export a decoder module must provide.
var RequiredExports = []string{
	exportMalloc,
	exportFree,
	bindDecoderNew,
	bindDecoderSkipAttributeTransform,
	bindDecoderGetEncodedGeometryType,
	bindDecoderDecodeToPointCloud,
	bindDecoderGetAttributeID,
	bindDecoderGetAttribute,
	bindDecoderGetAttributeFloatForAll,
	bindDecoderGetAttributeInt32ForAll,
	bindDecoderDestroy,
	bindBufferNew,
	bindBufferInit,
	bindBufferDestroy,
	bindPointCloudNew,
	bindPointCloudNumPoints,
	bindPointCloudDestroy,
	bindStatusOK,
	bindStatusErrorMsg,
	bindAttributeNumComponents,
	bindAttributeDataType,
	bindQuantNew,
	bindQuantInit,
	bindQuantBits,
	bindQuantMinValue,
	bindQuantRange,
	bindQuantDestroy,
	bindOctNew,
	bindOctInit,
	bindOctBits,
	bindOctDestroy,
	bindFloat32ArrayNew,
	bindFloat32ArrayGetValue,
	bindFloat32ArraySize,
	bindFloat32ArrayDestroy,
	bindInt32ArrayNew,
	bindInt32ArrayGetValue,
	bindInt32ArraySize,
	bindInt32ArrayDestroy,
}
