/*

Package created provides a lazily evaluated query builder called Created,
which lists documents of a MongoDB collection by their creation timestamp
(the createdAt field), always ordered by createdAt ascending.

Example using Created

Let's say we have a calls collection in MongoDB modeled with this Go struct:

    type Call struct {
        ID        bson.ObjectId `bson:"_id"`
        CreatedAt time.Time     `bson:"createdAt"`
    }

To list the first 10 calls created in 2018 up to February 9:

    c := conn.New(cfg, log)
    defer c.Close()

    q := created.New[Call](c)
    res, err := q.Since("2018").To("2018-02-09").Take(10).
        Select(created.Projection{"createdAt": created.Include}).
        Run(ctx, "calls")

    // res.Docs holds the calls.

Configuration calls only record settings, nothing is executed until Run
(or RunOn) is called. Once executed, the builder is reset to its defaults,
so it can be used for the next query.

Result modes

By default the result documents are materialized into Result.Docs (or into
Result.Mapped if a Map transform is set). Cursor() makes Run return a live
Result.Cursor instead, which must be closed by the caller. Explain() makes Run
return the query plan in Result.Plan; Explain wins over Cursor, and the
Map transform is only applied in array mode.

Note #1: Since and To are not validated when called. An invalid date is
reported by Run, and the builder is reset nonetheless.

Note #2: A builder holds the settings of one query at a time. Do not configure
the same builder from independent goroutines; create a builder per query
instead, builders are cheap.

*/
package created
