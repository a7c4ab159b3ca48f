package bake

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/asset"
	"github.com/Faultbox/meshbake/internal/scene"
	"github.com/Faultbox/meshbake/pkg/pak"
)

// Compile turns the meshes of doc that pass filter into a model. The
// result owns its buffers; doc is not retained.
//
// The index buffer holds mesh-relative indices. The write mask is compiled
// over model vertex slots (VertexOffset plus the mesh-relative index), so
// every vertex of every mesh has exactly one writer.
func Compile(doc *gltf.Document, filter asset.MeshFilter, log *zap.Logger) (*pak.Model, error) {
	if log == nil {
		log = zap.NewNop()
	}

	nodes, err := selectNodes(doc, filter, pak.MaxMeshes, log)
	if err != nil {
		return nil, err
	}
	indexType, err := SelectIndexType(doc, nodes)
	if err != nil {
		return nil, err
	}

	f := newFlattener(doc, indexType, log)
	meshes, err := f.flatten(nodes)
	if err != nil {
		return nil, err
	}

	mask := pak.CompileWriteMask(f.stream)
	return pak.NewModel(meshes, indexType, f.indices.Take(), f.vertices.Take(), mask), nil
}

// Baker compiles asset descriptors into a pak store. Each content key is
// compiled once; later requests return the registered id.
type Baker struct {
	store    *pak.Store
	scenes   *scene.Cache
	log      *zap.Logger
	validate bool
}

// Option configures a Baker.
type Option func(*Baker)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(b *Baker) { b.log = log }
}

// WithValidation toggles Model.Validate on every compiled model.
func WithValidation(enabled bool) Option {
	return func(b *Baker) { b.validate = enabled }
}

// WithSceneCache shares a scene cache between bakers.
func WithSceneCache(c *scene.Cache) Option {
	return func(b *Baker) { b.scenes = c }
}

// NewBaker creates a baker that registers into store.
func NewBaker(store *pak.Store, opts ...Option) *Baker {
	b := &Baker{
		store:    store,
		log:      zap.NewNop(),
		validate: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.scenes == nil {
		b.scenes = scene.NewCache()
	}
	return b
}

// Store returns the store the baker registers into.
func (b *Baker) Store() *pak.Store {
	return b.store
}

// BakeModel compiles the descriptor a, read from assetFile, and returns the
// id of its model. A key that is already registered is returned as is.
func (b *Baker) BakeModel(projectDir, assetFile string, a *asset.Model) (pak.ModelID, error) {
	key := asset.FilenameKey(projectDir, assetFile)
	return b.register(key, func() (*pak.Model, error) {
		return b.compile(projectDir, assetFile, key, a)
	})
}

// BakeFile loads the descriptor at assetFile and bakes it. The descriptor
// is not read when its key is already registered.
func (b *Baker) BakeFile(projectDir, assetFile string) (pak.ModelID, error) {
	key := asset.FilenameKey(projectDir, assetFile)
	return b.register(key, func() (*pak.Model, error) {
		a, err := asset.Load(assetFile)
		if err != nil {
			return nil, err
		}
		return b.compile(projectDir, assetFile, key, a)
	})
}

func (b *Baker) register(key string, build func() (*pak.Model, error)) (pak.ModelID, error) {
	id, built, err := b.store.Register(key, build)
	if err != nil {
		return 0, fmt.Errorf("baking %s: %w", key, err)
	}
	if !built {
		b.log.Debug("Reusing baked model", zap.String("key", key), zap.Uint32("id", uint32(id)))
	}
	return id, nil
}

func (b *Baker) compile(projectDir, assetFile, key string, a *asset.Model) (*pak.Model, error) {
	b.log.Info("Processing asset", zap.String("key", key))

	src := asset.SourcePath(projectDir, assetFile, a.Src)
	doc, err := b.scenes.Load(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSceneRead, err)
	}

	model, err := Compile(doc, a.Filter(), b.log.With(zap.String("key", key)))
	if err != nil {
		return nil, err
	}
	if b.validate {
		if err := model.Validate(); err != nil {
			return nil, err
		}
	}

	b.log.Debug("Compiled model",
		zap.String("key", key),
		zap.Int("meshes", len(model.Meshes)),
		zap.Stringer("index_type", model.IndexType),
		zap.Int("indices", model.IndexCount()),
		zap.Uint32("vertices", model.VertexCount()))
	return model, nil
}
