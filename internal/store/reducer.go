package store

import (
	"discovrr/internal/entity"
	"discovrr/internal/models"
	"discovrr/internal/observability"
)

// likes gives the reducer access to the statistics of a likeable entity.
type likes[T Entity] struct {
	get func(T) models.Statistics
	set func(T, models.Statistics) T
}

// changeSet is implemented by UpdateFulfilled for every changes type.
type changeSet[T Entity] interface {
	Action
	target() string
	apply(T) T
}

func (a UpdateFulfilled[T, C]) target() string { return a.ID }

func (a UpdateFulfilled[T, C]) apply(e T) T {
	if p, ok := any(e).(interface{ ApplyChanges(C) T }); ok {
		return p.ApplyChanges(a.Changes)
	}
	return e
}

// reduceEntities applies the lifecycle actions shared by every entity slice.
// Actions for other entity types fall through unchanged.
func reduceEntities[T Entity](ad entity.Adapter[T], lk *likes[T], log *observability.StoreLogger, s Slice[T], action Action) Slice[T] {
	switch a := action.(type) {
	case FetchOnePending[T]:
		s.Table = ad.SetStatus(s.Table, a.ID, entity.Begin(a.Reload))
	case FetchOneFulfilled[T]:
		s.Table = ad.UpsertOne(s.Table, a.Entity)
	case FetchOneRejected[T]:
		s.Table = ad.SetStatus(s.Table, a.ID, entity.Rejected(a.Err))

	case FetchAllPending[T]:
		begin := entity.Begin(a.Reload)
		s.Collection = begin
		s.bulk = s.SelectIDs()
		s.Table = ad.SetStatuses(s.Table, s.bulk, begin)
	case FetchAllFulfilled[T]:
		if a.Reload {
			s.Table = ad.SetAll(s.Table, a.Entities)
		} else {
			s.Table = ad.UpsertMany(s.Table, a.Entities)
		}
		s.Table = settleBulk(ad, s.Table, s.bulk)
		s.bulk = nil
		s.Collection = entity.Fulfilled()
	case FetchAllRejected[T]:
		rejected := entity.Rejected(a.Err)
		s.Collection = rejected
		s.Table = ad.SetStatuses(s.Table, s.SelectIDs(), rejected)
		s.bulk = nil

	case FetchManyFulfilled[T]:
		s.Table = ad.UpsertMany(s.Table, a.Entities)
	case CreateFulfilled[T]:
		s.Table = ad.UpsertOne(s.Table, a.Entity)
	case changeSet[T]:
		t, ok := ad.UpdateOne(s.Table, a.target(), a.apply)
		if !ok {
			log.LogSkipped(a.Type(), "entity not loaded", map[string]interface{}{"id": a.target()})
		}
		s.Table = t
	case DeleteFulfilled[T]:
		s.Table = ad.RemoveOne(s.Table, a.ID)

	case LikePending[T]:
		s.Table = applyLike(ad, lk, log, s.Table, a.Type(), a.ID, a.DidLike)
	case LikeFulfilled[T]:
		// optimistic state already reflects the confirmed value
	case LikeRejected[T]:
		s.Table = applyLike(ad, lk, log, s.Table, a.Type(), a.ID, !a.DidLike)
		observability.OptimisticRollbacks.WithLabelValues("like").Inc()
	}
	return s
}

// settleBulk ends the in-flight status the collection fetch gave to ids the
// response left out. Ids still loaded are fulfilled, dropped ids return to idle.
func settleBulk[T Entity](ad entity.Adapter[T], t entity.Table[T], ids []string) entity.Table[T] {
	for _, id := range ids {
		if !t.StatusOf(id).Status.InFlight() {
			continue
		}
		if t.Has(id) {
			t = ad.SetStatus(t, id, entity.Fulfilled())
		} else {
			t = ad.ClearStatus(t, id)
		}
	}
	return t
}

func applyLike[T Entity](ad entity.Adapter[T], lk *likes[T], log *observability.StoreLogger, t entity.Table[T], action, id string, didLike bool) entity.Table[T] {
	if lk == nil {
		log.LogSkipped(action, "entity type has no statistics", nil)
		return t
	}
	out, ok := ad.UpdateOne(t, id, func(e T) T {
		return lk.set(e, ApplyLikeTransform(lk.get(e), didLike))
	})
	if !ok {
		log.LogSkipped(action, "entity not loaded", map[string]interface{}{"id": id})
	}
	return out
}

var (
	postLikes = &likes[models.Post]{
		get: func(p models.Post) models.Statistics { return p.Statistics },
		set: func(p models.Post, st models.Statistics) models.Post { p.Statistics = st; return p },
	}
	commentLikes = &likes[models.Comment]{
		get: func(c models.Comment) models.Statistics { return c.Statistics },
		set: func(c models.Comment, st models.Statistics) models.Comment { c.Statistics = st; return c },
	}
	replyLikes = &likes[models.Reply]{
		get: func(r models.Reply) models.Statistics { return r.Statistics },
		set: func(r models.Reply, st models.Statistics) models.Reply { r.Statistics = st; return r },
	}
	productLikes = &likes[models.Product]{
		get: func(p models.Product) models.Statistics { return p.Statistics },
		set: func(p models.Product, st models.Statistics) models.Product { p.Statistics = st; return p },
	}
	merchantLikes = &likes[models.Merchant]{
		get: func(m models.Merchant) models.Statistics { return m.Statistics },
		set: func(m models.Merchant, st models.Statistics) models.Merchant { m.Statistics = st; return m },
	}
)

var (
	postsLog         = observability.NewStoreLogger("posts")
	commentsLog      = observability.NewStoreLogger("comments")
	repliesLog       = observability.NewStoreLogger("commentReplies")
	profilesLog      = observability.NewStoreLogger("profiles")
	productsLog      = observability.NewStoreLogger("products")
	merchantsLog     = observability.NewStoreLogger("merchants")
	notificationsLog = observability.NewStoreLogger("notifications")
	authLog          = observability.NewStoreLogger("auth")
)

// Reduce returns the state after applying action. It never fails; errors
// carried by rejected actions are stored as data.
func Reduce(s State, action Action) State {
	if r, ok := action.(ResetAllData); ok {
		return reset(s, r)
	}
	s.Posts = reduceEntities(PostAdapter, postLikes, postsLog, s.Posts, action)
	s.Comments = reduceEntities(CommentAdapter, commentLikes, commentsLog, s.Comments, action)
	s.CommentReplies = reduceEntities(ReplyAdapter, replyLikes, repliesLog, s.CommentReplies, action)
	s.Profiles = reduceProfiles(s.Profiles, action)
	s.Products = reduceEntities(ProductAdapter, productLikes, productsLog, s.Products, action)
	s.Merchants = reduceEntities(MerchantAdapter, merchantLikes, merchantsLog, s.Merchants, action)
	s.Notifications = reduceNotifications(s.Notifications, action)
	s.Auth = reduceAuth(s.Auth, action)
	s.Settings = reduceSettings(s.Settings, action)
	return s
}
