package di

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/churches"
	"github.com/viddefe/go-viddefe/internal/commands"
	"github.com/viddefe/go-viddefe/internal/commands/churchcmd"
	"github.com/viddefe/go-viddefe/internal/commands/meetingcmd"
	"github.com/viddefe/go-viddefe/internal/commands/offeringcmd"
	"github.com/viddefe/go-viddefe/internal/events"
	"github.com/viddefe/go-viddefe/internal/fixtures"
	"github.com/viddefe/go-viddefe/internal/forms"
	"github.com/viddefe/go-viddefe/internal/geo"
	"github.com/viddefe/go-viddefe/internal/homegroups"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/internal/logging/console"
	"github.com/viddefe/go-viddefe/internal/logging/gologger"
	"github.com/viddefe/go-viddefe/internal/logging/zaplog"
	"github.com/viddefe/go-viddefe/internal/meetings"
	"github.com/viddefe/go-viddefe/internal/metrics"
	"github.com/viddefe/go-viddefe/internal/mutation"
	"github.com/viddefe/go-viddefe/internal/offerings"
	"github.com/viddefe/go-viddefe/internal/people"
	"github.com/viddefe/go-viddefe/internal/permissions"
	"github.com/viddefe/go-viddefe/internal/query"
	"github.com/viddefe/go-viddefe/internal/remote"
	"github.com/viddefe/go-viddefe/internal/runtimeconfig"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// Container wires module dependencies for one client session.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	ownsDB        bool
	httpClient    *http.Client
	remoteClient  *remote.Client
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	geoRepo          geo.Repository
	personRepo       people.PersonRepository
	churchRepo       churches.ChurchRepository
	groupRepo        homegroups.GroupRepository
	meetingRepo      meetings.MeetingRepository
	attendanceRepo   meetings.AttendanceRepository
	offeringRepo     offerings.OfferingRepository
	offeringTypeRepo offerings.TypeRepository

	geoSvc      geo.Service
	peopleSvc   people.Service
	churchSvc   churches.Service
	groupSvc    homegroups.Service
	meetingSvc  meetings.Service
	offeringSvc offerings.Service

	bus        interfaces.EventBus
	ownsBus    bool
	binder     *events.Binder
	registerer prometheus.Registerer
	collector  *metrics.Collector

	capabilities permissions.Capabilities
	mapFactory   interfaces.MapWidgetFactory

	churchQuery *query.Client[uuid.UUID, *domain.Church]

	saveChurch       *churchcmd.SaveChurchHandler
	deleteChurch     *churchcmd.DeleteChurchHandler
	saveMeeting      *meetingcmd.SaveMeetingHandler
	deleteMeeting    *meetingcmd.DeleteMeetingHandler
	setAttendance    *meetingcmd.SetAttendanceHandler
	registerOffering *offeringcmd.RegisterOfferingHandler
	deleteOffering   *offeringcmd.DeleteOfferingHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB stores entities in db instead of memory. The container does not close db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache used by bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithHTTPClient sets the transport used by the http storage provider.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// WithEventBus overrides the bus selected by Config.Events. The container does not close it.
func WithEventBus(bus interfaces.EventBus) Option {
	return func(c *Container) {
		c.bus = bus
	}
}

// WithRegisterer registers metrics on registerer instead of a private registry.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(c *Container) {
		c.registerer = registerer
	}
}

// WithCapabilities sets what the signed in user may do. Defaults to AllowAll.
func WithCapabilities(caps permissions.Capabilities) Option {
	return func(c *Container) {
		if caps != nil {
			c.capabilities = caps
		}
	}
}

// WithMapFactory enables the map picker on church forms.
func WithMapFactory(factory interfaces.MapWidgetFactory) Option {
	return func(c *Container) {
		c.mapFactory = factory
	}
}

// WithChurchService overrides the church service.
func WithChurchService(svc churches.Service) Option {
	return func(c *Container) {
		c.churchSvc = svc
	}
}

// WithGeoService overrides the geographic catalog.
func WithGeoService(svc geo.Service) Option {
	return func(c *Container) {
		c.geoSvc = svc
	}
}

// NewContainer validates cfg and wires every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:       cfg,
		cacheTTL:     cacheTTL,
		capabilities: permissions.AllowAll(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "viddefe.di")

	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureServices()

	if err := c.configureEvents(); err != nil {
		c.closeOwned()
		return nil, err
	}
	if err := c.configureMetrics(); err != nil {
		c.closeOwned()
		return nil, err
	}
	c.configureCommands()
	if err := c.configureQueries(); err != nil {
		c.closeOwned()
		return nil, err
	}

	c.logger.Debug("di.container.ready",
		"storage", normalized(cfg.Storage.Provider),
		"events", c.bus != nil,
		"metrics", c.collector != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}
	logCfg := c.Config.Logging
	switch normalized(logCfg.Provider) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	case "zap":
		provider, err := zaplog.NewProvider(zaplog.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level := console.ParseLevel(logCfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
	}
	return nil
}

func (c *Container) configureStorage() error {
	switch normalized(c.Config.Storage.Provider) {
	case runtimeconfig.StorageBun:
		if c.bunDB != nil {
			return nil
		}
		db, err := OpenBunDB(c.Config.Storage)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	case runtimeconfig.StorageHTTP:
		opts := []remote.Option{remote.WithLogger(logging.RemoteLogger(c.loggerProvider))}
		if c.httpClient != nil {
			opts = append(opts, remote.WithHTTPClient(c.httpClient))
		}
		client, err := remote.NewClient(c.Config.Backend, opts...)
		if err != nil {
			return err
		}
		c.remoteClient = client
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.logger.Warn("di.cache.disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	switch {
	case c.remoteClient != nil:
		c.geoRepo = remote.NewGeoRepository(c.remoteClient)
		c.personRepo = remote.NewPersonRepository(c.remoteClient)
		c.churchRepo = remote.NewChurchRepository(c.remoteClient)
		c.groupRepo = remote.NewGroupRepository(c.remoteClient)
		c.meetingRepo = remote.NewMeetingRepository(c.remoteClient)
		c.attendanceRepo = remote.NewAttendanceRepository(c.remoteClient)
		c.offeringRepo = remote.NewOfferingRepository(c.remoteClient)
		c.offeringTypeRepo = remote.NewOfferingTypeRepository(c.remoteClient)
	case c.bunDB != nil:
		c.geoRepo = geo.NewBunRepository(c.bunDB)
		c.personRepo = people.NewBunPersonRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.churchRepo = churches.NewBunChurchRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.groupRepo = homegroups.NewBunGroupRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.meetingRepo = meetings.NewBunMeetingRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.attendanceRepo = meetings.NewBunAttendanceRepository(c.bunDB)
		c.offeringRepo = offerings.NewBunOfferingRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.offeringTypeRepo = offerings.NewBunTypeRepository(c.bunDB)
	default:
		c.geoRepo = geo.NewMemoryRepository()
		c.personRepo = people.NewMemoryRepository()
		c.churchRepo = churches.NewMemoryRepository()
		c.groupRepo = homegroups.NewMemoryRepository()
		c.meetingRepo = meetings.NewMemoryMeetingRepository()
		c.attendanceRepo = meetings.NewMemoryAttendanceRepository()
		c.offeringRepo = offerings.NewMemoryOfferingRepository()
		c.offeringTypeRepo = offerings.NewMemoryTypeRepository()
	}
}

func (c *Container) configureServices() {
	provider := c.loggerProvider

	if c.geoSvc == nil {
		c.geoSvc = geo.NewService(c.geoRepo, geo.WithLogger(logging.GeoLogger(provider)))
	}
	if c.peopleSvc == nil {
		c.peopleSvc = people.NewService(c.personRepo,
			people.WithLogger(logging.ModuleLogger(provider, "viddefe.people")))
	}
	if c.churchSvc == nil {
		c.churchSvc = churches.NewService(c.churchRepo,
			churches.WithPastorLookup(c.peopleSvc),
			churches.WithGeoLookup(c.geoSvc),
			churches.WithLogger(logging.ModuleLogger(provider, "viddefe.churches")),
		)
	}
	if c.groupSvc == nil {
		c.groupSvc = homegroups.NewService(c.groupRepo,
			homegroups.WithPersonLookup(c.peopleSvc),
			homegroups.WithGeoLookup(c.geoSvc),
		)
	}
	if c.meetingSvc == nil {
		c.meetingSvc = meetings.NewService(c.meetingRepo, c.attendanceRepo,
			meetings.WithRoster(c.peopleSvc),
			meetings.WithLogger(logging.ModuleLogger(provider, "viddefe.meetings")),
		)
	}
	if c.offeringSvc == nil {
		c.offeringSvc = offerings.NewService(c.offeringRepo, c.offeringTypeRepo,
			offerings.WithMeetingLookup(c.meetingSvc),
			offerings.WithPersonLookup(c.peopleSvc),
			offerings.WithLogger(logging.ModuleLogger(provider, "viddefe.offerings")),
		)
	}
}

func (c *Container) configureEvents() error {
	if c.bus == nil && c.Config.Features.Events {
		logger := logging.EventsLogger(c.loggerProvider)
		switch normalized(c.Config.Events.Provider) {
		case runtimeconfig.EventsNATS:
			bus, err := events.ConnectNATS(c.Config.Events.NATSURL, c.Config.Events.Subject, logger)
			if err != nil {
				return err
			}
			c.bus = bus
		default:
			c.bus = events.NewMemoryBus(logger)
		}
		c.ownsBus = true
	}
	if c.bus != nil {
		c.binder = events.NewBinder(c.bus, logging.EventsLogger(c.loggerProvider))
	}
	return nil
}

func (c *Container) configureMetrics() error {
	if !c.Config.Features.Metrics {
		return nil
	}
	collector, err := metrics.NewCollector(c.Config.Metrics.Namespace, c.registerer)
	if err != nil {
		return err
	}
	c.collector = collector
	return nil
}

func (c *Container) configureCommands() {
	timeout := c.Config.Commands.Timeout
	logger := func(module string) interfaces.Logger {
		return commands.CommandLogger(c.loggerProvider, module)
	}

	c.saveChurch = churchcmd.NewSaveChurchHandler(c.churchSvc, c.bus, logger("churches"),
		commands.WithTimeout[churchcmd.SaveChurchCommand](timeout))
	c.deleteChurch = churchcmd.NewDeleteChurchHandler(c.churchSvc, c.bus, logger("churches"),
		commands.WithTimeout[churchcmd.DeleteChurchCommand](timeout))
	c.saveMeeting = meetingcmd.NewSaveMeetingHandler(c.meetingSvc, c.bus, logger("meetings"),
		commands.WithTimeout[meetingcmd.SaveMeetingCommand](timeout))
	c.deleteMeeting = meetingcmd.NewDeleteMeetingHandler(c.meetingSvc, c.bus, logger("meetings"),
		commands.WithTimeout[meetingcmd.DeleteMeetingCommand](timeout))
	c.setAttendance = meetingcmd.NewSetAttendanceHandler(c.meetingSvc, c.bus, logger("attendance"),
		commands.WithTimeout[meetingcmd.SetAttendanceCommand](timeout))
	c.registerOffering = offeringcmd.NewRegisterOfferingHandler(c.offeringSvc, c.bus, logger("offerings"),
		commands.WithTimeout[offeringcmd.RegisterOfferingCommand](timeout))
	c.deleteOffering = offeringcmd.NewDeleteOfferingHandler(c.offeringSvc, c.bus, logger("offerings"),
		commands.WithTimeout[offeringcmd.DeleteOfferingCommand](timeout))
}

func (c *Container) configureQueries() error {
	opts := []query.Option{
		query.WithCapacity(c.Config.Query.Capacity),
		query.WithStaleTime(c.Config.Query.StaleTime),
		query.WithLogger(logging.QueryLogger(c.loggerProvider)),
	}
	if c.collector != nil {
		opts = append(opts, query.WithObserver(c.collector))
	}
	c.churchQuery = query.NewClient("church", c.churchSvc.Get, opts...)
	if c.binder != nil {
		if err := c.binder.Invalidate(permissions.ResourceChurches, c.churchQuery); err != nil {
			return err
		}
	}
	return nil
}

// EnsureSchema creates the bun tables when the container stores entities in a database.
func (c *Container) EnsureSchema(ctx context.Context) error {
	if c.bunDB == nil {
		return nil
	}
	return EnsureSchema(ctx, c.bunDB)
}

// Seed loads seed into the active store.
func (c *Container) Seed(ctx context.Context, seed fixtures.Seed) (fixtures.Summary, error) {
	loader, err := fixtures.NewLoader(fixtures.Services{
		Geo:       c.geoSvc,
		People:    c.peopleSvc,
		Churches:  c.churchSvc,
		Offerings: c.offeringSvc,
	}, logging.FixturesLogger(c.loggerProvider))
	if err != nil {
		return fixtures.Summary{}, err
	}
	return loader.Load(ctx, seed)
}

// NewChurchForm builds a church form bound to the shared church query.
func (c *Container) NewChurchForm(onChange func(forms.ChurchFormState), onSaved func(*domain.Church)) (*forms.ChurchForm, error) {
	cfg := forms.ChurchFormConfig{
		Churches:     c.churchQuery,
		Geo:          c.geoSvc,
		Save:         newMutation(c, "churches.save", c.saveChurch.Save),
		Capabilities: c.capabilities,
		MapFactory:   c.mapFactory,
		Map:          c.Config.Map,
		Logger:       logging.FormsLogger(c.loggerProvider),
		OnChange:     onChange,
		OnSaved:      onSaved,
	}
	if c.collector != nil {
		cfg.Observer = c.collector
	}
	return forms.NewChurchForm(cfg)
}

// NewChurchViewLoader builds the loader for the church detail screen.
func (c *Container) NewChurchViewLoader() (*forms.ChurchViewLoader, error) {
	return forms.NewChurchViewLoader(c.churchQuery, c.groupSvc, c.peopleSvc, c.capabilities, logging.FormsLogger(c.loggerProvider))
}

// NewMeetingDetail builds a meeting detail. Attendance changes announced on the
// bus reload its attendance list; the caller must Close it.
func (c *Container) NewMeetingDetail(onChange func(forms.MeetingDetailState)) (*forms.MeetingDetail, func(), error) {
	cfg := forms.MeetingDetailConfig{
		Meetings:     c.meetingSvc,
		Offerings:    c.offeringSvc,
		Attendance:   c.newAttendanceMutation(),
		Capabilities: c.capabilities,
		PageSize:     c.Config.Pagination.DefaultPageSize,
		Logger:       logging.FormsLogger(c.loggerProvider),
		OnChange:     onChange,
	}
	if c.collector != nil {
		cfg.Observer = c.collector
	}
	detail, err := forms.NewMeetingDetail(cfg)
	if err != nil {
		return nil, nil, err
	}
	if c.bus == nil {
		return detail, detail.Close, nil
	}
	binder := events.NewBinder(c.bus, logging.EventsLogger(c.loggerProvider))
	if err := binder.Refresh(permissions.ResourceAttendance, detail); err != nil {
		detail.Close()
		return nil, nil, err
	}
	release := func() {
		binder.Unbind()
		detail.Close()
	}
	return detail, release, nil
}

// NewOfferingModal builds the offering registration modal.
func (c *Container) NewOfferingModal(onSaved func(*domain.Offering)) (*forms.OfferingModal, error) {
	return forms.NewOfferingModal(forms.OfferingModalConfig{
		Offerings:    c.offeringSvc,
		Register:     newMutation(c, "offerings.register", c.registerOffering.Register),
		Capabilities: c.capabilities,
		Logger:       logging.FormsLogger(c.loggerProvider),
		OnSaved:      onSaved,
	})
}

// NewChurchList builds the church list. Unset collaborators come from the
// container; church change events reload the current page until release.
func (c *Container) NewChurchList(cfg forms.ChurchListConfig) (*forms.List[*domain.Church], func(), error) {
	if cfg.Churches == nil {
		cfg.Churches = c.churchSvc
	}
	if cfg.Capabilities == nil {
		cfg.Capabilities = c.capabilities
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = c.Config.Pagination.DefaultPageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.FormsLogger(c.loggerProvider)
	}
	list, err := forms.NewChurchList(cfg)
	if err != nil {
		return nil, nil, err
	}
	if c.bus == nil {
		return list, list.Close, nil
	}
	binder := events.NewBinder(c.bus, logging.EventsLogger(c.loggerProvider))
	if err := binder.Refresh(permissions.ResourceChurches, list); err != nil {
		list.Close()
		return nil, nil, err
	}
	return list, func() {
		binder.Unbind()
		list.Close()
	}, nil
}

// NewPeopleList builds the person list filtered by filter.
func (c *Container) NewPeopleList(filter people.Filter) (*forms.List[*domain.Person], error) {
	return forms.NewPeopleList(c.peopleSvc, filter, c.capabilities, c.Config.Pagination.DefaultPageSize, logging.FormsLogger(c.loggerProvider))
}

// NewGroupList builds the home group list of churchID.
func (c *Container) NewGroupList(churchID uuid.UUID) (*forms.List[*domain.HomeGroup], error) {
	return forms.NewGroupList(c.groupSvc, churchID, c.capabilities, c.Config.Pagination.DefaultPageSize, logging.FormsLogger(c.loggerProvider))
}

// NewMeetingList builds the meeting list filtered by filter.
func (c *Container) NewMeetingList(filter meetings.Filter) (*forms.List[*domain.Meeting], error) {
	return forms.NewMeetingList(c.meetingSvc, filter, c.capabilities, c.Config.Pagination.DefaultPageSize, logging.FormsLogger(c.loggerProvider))
}

func (c *Container) newAttendanceMutation() *mutation.Mutation[meetingcmd.SetAttendanceCommand, *domain.Attendance] {
	return newMutation(c, "attendance.set", c.setAttendance.Set)
}

func (c *Container) mutationOptions() []mutation.Option {
	opts := []mutation.Option{mutation.WithLogger(logging.ModuleLogger(c.loggerProvider, "viddefe.mutation"))}
	if c.collector != nil {
		opts = append(opts, mutation.WithObserver(c.collector))
	}
	return opts
}

// Close releases resources the container opened itself.
func (c *Container) Close() error {
	if c.binder != nil {
		c.binder.Unbind()
	}
	return c.closeOwned()
}

func (c *Container) closeOwned() error {
	var errs error
	if c.ownsBus && c.bus != nil {
		errs = errors.Join(errs, c.bus.Close())
	}
	if c.ownsDB && c.bunDB != nil {
		errs = errors.Join(errs, c.bunDB.Close())
	}
	if syncer, ok := c.loggerProvider.(interface{ Sync() error }); ok {
		_ = syncer.Sync()
	}
	return errs
}

// LoggerProvider returns the provider every module logger is taken from. It is
// nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) BunDB() *bun.DB { return c.bunDB }

func (c *Container) GeoService() geo.Service { return c.geoSvc }

func (c *Container) PeopleService() people.Service { return c.peopleSvc }

func (c *Container) ChurchService() churches.Service { return c.churchSvc }

func (c *Container) HomeGroupService() homegroups.Service { return c.groupSvc }

func (c *Container) MeetingService() meetings.Service { return c.meetingSvc }

func (c *Container) OfferingService() offerings.Service { return c.offeringSvc }

// EventBus returns the entity change bus, nil when events are disabled.
func (c *Container) EventBus() interfaces.EventBus { return c.bus }

// Metrics returns the collector, nil when metrics are disabled.
func (c *Container) Metrics() *metrics.Collector { return c.collector }

func (c *Container) Capabilities() permissions.Capabilities { return c.capabilities }

// ChurchQuery returns the church query shared by every form of the session.
func (c *Container) ChurchQuery() *query.Client[uuid.UUID, *domain.Church] { return c.churchQuery }

// SaveChurchHandler returns the church create/update command handler.
func (c *Container) SaveChurchHandler() *churchcmd.SaveChurchHandler { return c.saveChurch }

// DeleteChurchHandler returns the church delete command handler.
func (c *Container) DeleteChurchHandler() *churchcmd.DeleteChurchHandler { return c.deleteChurch }

// SaveMeetingHandler returns the meeting create/update command handler.
func (c *Container) SaveMeetingHandler() *meetingcmd.SaveMeetingHandler { return c.saveMeeting }

// DeleteMeetingHandler returns the meeting delete command handler.
func (c *Container) DeleteMeetingHandler() *meetingcmd.DeleteMeetingHandler { return c.deleteMeeting }

// SetAttendanceHandler returns the attendance command handler.
func (c *Container) SetAttendanceHandler() *meetingcmd.SetAttendanceHandler { return c.setAttendance }

// RegisterOfferingHandler returns the offering registration command handler.
func (c *Container) RegisterOfferingHandler() *offeringcmd.RegisterOfferingHandler {
	return c.registerOffering
}

// DeleteOfferingHandler returns the offering delete command handler.
func (c *Container) DeleteOfferingHandler() *offeringcmd.DeleteOfferingHandler {
	return c.deleteOffering
}

func newMutation[P any, R any](c *Container, name string, fn mutation.Func[P, R]) *mutation.Mutation[P, R] {
	return mutation.New(name, fn, c.mutationOptions()...)
}

func normalized(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
