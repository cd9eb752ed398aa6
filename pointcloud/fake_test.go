package pointcloud

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wippyai/draco-decoder/draco"
)

var errInjected = errors.New("injected failure")

// fakeAttribute describes one attribute of the fake point cloud.
type fakeAttribute struct {
	floats        []float32
	ints          []int32
	minValues     []float32
	numComponents int32
	dataType      draco.DataType
	quantBits     int32
	quantRange    float32
	octBits       int32
	noTransform   bool
}

// fakeModule is an in-memory draco.Module that records every object it
// hands out so tests can check that each one is released exactly once.
type fakeModule struct {
	attributes map[draco.AttributeType]*fakeAttribute
	failOn     map[string]bool
	errorMsg   string
	objects    []*fakeObject
	engines    []*fakeEngine
	geometry   draco.GeometryType
	numPoints  int32
	mu         sync.Mutex
	decodeFail bool
	nullCloud  bool
}

func newFakeModule() *fakeModule {
	return &fakeModule{
		attributes: make(map[draco.AttributeType]*fakeAttribute),
		failOn:     make(map[string]bool),
		geometry:   draco.GeometryPointCloud,
	}
}

// threePointCloud encodes POSITION (3 floats) and COLOR (4 uint8) for 3 points.
func threePointCloud() *fakeModule {
	m := newFakeModule()
	m.numPoints = 3
	m.attributes[draco.AttributePosition] = &fakeAttribute{
		numComponents: 3,
		dataType:      draco.DTFloat32,
		floats:        []float32{0, 0, 0, 1, 2, 3, -4.5, 5.25, 6},
		ints:          []int32{0, 0, 0, 100, 200, 300, 16383, 1, 2},
		quantBits:     14,
		minValues:     []float32{-4.5, 0, 0},
		quantRange:    9.5,
	}
	m.attributes[draco.AttributeColor] = &fakeAttribute{
		numComponents: 4,
		dataType:      draco.DTUint8,
		ints:          []int32{255, 0, 0, 255, 0, 255, 0, 255, 0, 0, 255, 128},
	}
	m.attributes[draco.AttributeNormal] = &fakeAttribute{
		numComponents: 2,
		dataType:      draco.DTFloat32,
		floats:        []float32{0, 1, 1, 0, 0.5, 0.5},
		ints:          []int32{-511, 511, 0, -1, 255, 256},
		octBits:       10,
	}
	m.attributes[draco.AttributeGeneric] = &fakeAttribute{
		numComponents: 1,
		dataType:      draco.DTUint16,
		ints:          []int32{0, 1, 1},
	}
	return m
}

func (m *fakeModule) fail(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[op] {
		return fmt.Errorf("%s: %w", op, errInjected)
	}
	return nil
}

func (m *fakeModule) newObject(kind string) *fakeObject {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := &fakeObject{module: m, kind: kind}
	m.objects = append(m.objects, o)
	return o
}

// leaks returns objects whose release count is not exactly one.
func (m *fakeModule) leaks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var bad []string
	for _, o := range m.objects {
		if o.releases != 1 {
			bad = append(bad, fmt.Sprintf("%s released %d times", o.kind, o.releases))
		}
	}
	return bad
}

func (m *fakeModule) created(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.objects {
		if o.kind == kind {
			n++
		}
	}
	return n
}

func (m *fakeModule) NewDecoder(context.Context) (draco.Decoder, error) {
	if err := m.fail("NewDecoder"); err != nil {
		return nil, err
	}
	e := &fakeEngine{module: m}
	m.mu.Lock()
	m.engines = append(m.engines, e)
	m.mu.Unlock()
	return e, nil
}

func (m *fakeModule) NewBuffer(_ context.Context, data []byte) (draco.Buffer, error) {
	if err := m.fail("NewBuffer"); err != nil {
		return nil, err
	}
	return &fakeBuffer{fakeObject: m.newObject("buffer"), n: len(data)}, nil
}

func (m *fakeModule) NewPointCloud(context.Context) (draco.PointCloud, error) {
	if err := m.fail("NewPointCloud"); err != nil {
		return nil, err
	}
	return &fakePointCloud{fakeObject: m.newObject("point_cloud")}, nil
}

func (m *fakeModule) NewQuantizationTransform(context.Context) (draco.QuantizationTransform, error) {
	if err := m.fail("NewQuantizationTransform"); err != nil {
		return nil, err
	}
	return &fakeQuantization{fakeObject: m.newObject("quantization_transform")}, nil
}

func (m *fakeModule) NewOctahedronTransform(context.Context) (draco.OctahedronTransform, error) {
	if err := m.fail("NewOctahedronTransform"); err != nil {
		return nil, err
	}
	return &fakeOctahedron{fakeObject: m.newObject("octahedron_transform")}, nil
}

func (m *fakeModule) NewFloat32Array(context.Context) (draco.Float32Array, error) {
	if err := m.fail("NewFloat32Array"); err != nil {
		return nil, err
	}
	return &fakeFloatArray{fakeObject: m.newObject("float32_array")}, nil
}

func (m *fakeModule) NewInt32Array(context.Context) (draco.Int32Array, error) {
	if err := m.fail("NewInt32Array"); err != nil {
		return nil, err
	}
	return &fakeIntArray{fakeObject: m.newObject("int32_array")}, nil
}

type fakeObject struct {
	module   *fakeModule
	kind     string
	releases int
}

func (o *fakeObject) Release(context.Context) error {
	o.module.mu.Lock()
	o.releases++
	o.module.mu.Unlock()
	return o.module.fail("Release:" + o.kind)
}

type fakeBuffer struct {
	*fakeObject
	n int
}

func (b *fakeBuffer) Len() int { return b.n }

type fakePointCloud struct {
	*fakeObject
	decoded bool
}

func (p *fakePointCloud) Valid() bool { return !p.module.nullCloud }

func (p *fakePointCloud) NumPoints(context.Context) (int32, error) {
	if err := p.module.fail("NumPoints"); err != nil {
		return 0, err
	}
	return p.module.numPoints, nil
}

type fakeStatus struct {
	msg string
	ok  bool
}

func (s *fakeStatus) OK(context.Context) (bool, error)         { return s.ok, nil }
func (s *fakeStatus) ErrorMsg(context.Context) (string, error) { return s.msg, nil }

type fakeAttrHandle struct {
	module *fakeModule
	attr   *fakeAttribute
	typ    draco.AttributeType
}

func (a *fakeAttrHandle) NumComponents(context.Context) (int32, error) {
	if err := a.module.fail("NumComponents"); err != nil {
		return 0, err
	}
	return a.attr.numComponents, nil
}

func (a *fakeAttrHandle) DataType(context.Context) (draco.DataType, error) {
	if err := a.module.fail("DataType"); err != nil {
		return 0, err
	}
	return a.attr.dataType, nil
}

type fakeQuantization struct {
	*fakeObject
	attr *fakeAttribute
}

func (q *fakeQuantization) InitFromAttribute(_ context.Context, attr draco.Attribute) (bool, error) {
	if err := q.module.fail("InitFromAttribute"); err != nil {
		return false, err
	}
	q.attr = attr.(*fakeAttrHandle).attr
	return !q.attr.noTransform, nil
}

func (q *fakeQuantization) QuantizationBits(context.Context) (int32, error) {
	return q.attr.quantBits, nil
}

func (q *fakeQuantization) MinValue(_ context.Context, axis int32) (float32, error) {
	if err := q.module.fail("MinValue"); err != nil {
		return 0, err
	}
	return q.attr.minValues[axis], nil
}

func (q *fakeQuantization) Range(context.Context) (float32, error) {
	return q.attr.quantRange, nil
}

type fakeOctahedron struct {
	*fakeObject
	attr *fakeAttribute
}

func (o *fakeOctahedron) InitFromAttribute(_ context.Context, attr draco.Attribute) (bool, error) {
	if err := o.module.fail("InitFromAttribute"); err != nil {
		return false, err
	}
	o.attr = attr.(*fakeAttrHandle).attr
	return !o.attr.noTransform, nil
}

func (o *fakeOctahedron) QuantizationBits(context.Context) (int32, error) {
	if err := o.module.fail("OctQuantizationBits"); err != nil {
		return 0, err
	}
	return o.attr.octBits, nil
}

type fakeFloatArray struct {
	*fakeObject
	values []float32
}

func (f *fakeFloatArray) Size(context.Context) (int32, error) { return int32(len(f.values)), nil }

func (f *fakeFloatArray) GetValue(_ context.Context, i int32) (float32, error) {
	if err := f.module.fail("GetValue"); err != nil {
		return 0, err
	}
	return f.values[i], nil
}

type fakeIntArray struct {
	*fakeObject
	values []int32
}

func (f *fakeIntArray) Size(context.Context) (int32, error) { return int32(len(f.values)), nil }

func (f *fakeIntArray) GetValue(_ context.Context, i int32) (int32, error) {
	if err := f.module.fail("GetValue"); err != nil {
		return 0, err
	}
	return f.values[i], nil
}

// fakeEngine implements draco.Decoder over the module's attribute table.
type fakeEngine struct {
	module  *fakeModule
	skipped []draco.AttributeType
}

func (e *fakeEngine) SkipAttributeTransform(_ context.Context, t draco.AttributeType) error {
	e.skipped = append(e.skipped, t)
	return nil
}

func (e *fakeEngine) skips(t draco.AttributeType) bool {
	for _, s := range e.skipped {
		if s == t {
			return true
		}
	}
	return false
}

func (e *fakeEngine) GetEncodedGeometryType(context.Context, draco.Buffer) (draco.GeometryType, error) {
	if err := e.module.fail("GetEncodedGeometryType"); err != nil {
		return draco.GeometryInvalid, err
	}
	return e.module.geometry, nil
}

func (e *fakeEngine) DecodeBufferToPointCloud(_ context.Context, _ draco.Buffer, pc draco.PointCloud) (draco.Status, error) {
	if err := e.module.fail("DecodeBufferToPointCloud"); err != nil {
		return nil, err
	}
	if e.module.decodeFail {
		return &fakeStatus{ok: false, msg: e.module.errorMsg}, nil
	}
	pc.(*fakePointCloud).decoded = true
	return &fakeStatus{ok: true}, nil
}

func (e *fakeEngine) GetAttributeID(_ context.Context, _ draco.PointCloud, t draco.AttributeType) (int32, error) {
	if err := e.module.fail("GetAttributeID"); err != nil {
		return -1, err
	}
	if _, ok := e.module.attributes[t]; !ok {
		return -1, nil
	}
	return int32(t), nil
}

func (e *fakeEngine) GetAttribute(_ context.Context, _ draco.PointCloud, id int32) (draco.Attribute, error) {
	if err := e.module.fail("GetAttribute"); err != nil {
		return nil, err
	}
	t := draco.AttributeType(id)
	return &fakeAttrHandle{module: e.module, attr: e.module.attributes[t], typ: t}, nil
}

func (e *fakeEngine) GetAttributeFloatForAllPoints(_ context.Context, _ draco.PointCloud, attr draco.Attribute, out draco.Float32Array) (bool, error) {
	if err := e.module.fail("GetAttributeFloatForAllPoints"); err != nil {
		return false, err
	}
	a := attr.(*fakeAttrHandle)
	if e.skips(a.typ) {
		// Skipped transforms leave integer values; the float read fails like Draco's does.
		return false, nil
	}
	out.(*fakeFloatArray).values = append([]float32(nil), a.attr.floats...)
	return true, nil
}

func (e *fakeEngine) GetAttributeInt32ForAllPoints(_ context.Context, _ draco.PointCloud, attr draco.Attribute, out draco.Int32Array) (bool, error) {
	if err := e.module.fail("GetAttributeInt32ForAllPoints"); err != nil {
		return false, err
	}
	a := attr.(*fakeAttrHandle)
	out.(*fakeIntArray).values = append([]int32(nil), a.attr.ints...)
	return true, nil
}
